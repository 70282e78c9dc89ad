package autoload

import (
	configx "github.com/verdanthealth/wellness-agent/pkg/config"
	logx "github.com/verdanthealth/wellness-agent/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
