package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/opsdesk/internal/clock"
	"github.com/smallbiznis/opsdesk/internal/config"
	"github.com/smallbiznis/opsdesk/internal/migration"
	"github.com/smallbiznis/opsdesk/internal/observability"
	"github.com/smallbiznis/opsdesk/internal/scheduler"
	"github.com/smallbiznis/opsdesk/internal/server"
	"github.com/smallbiznis/opsdesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
