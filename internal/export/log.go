package export

import (
	"go.uber.org/zap"

	"github.com/yiblet/proboost/internal/zlog"
)

func logger() *zap.SugaredLogger {
	return zlog.Get()
}
