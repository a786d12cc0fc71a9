package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest"

	"github.com/uniauth/uniauth/internal/apperr"
	"github.com/uniauth/uniauth/internal/config"
	"github.com/uniauth/uniauth/internal/handler"
	"github.com/uniauth/uniauth/internal/middleware"
	"github.com/uniauth/uniauth/internal/svc"
)

var configFile = flag.String("f", "etc/uniauth.yaml", "the config file")

func main() {
	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c)

	apperr.RegisterErrorHandler()

	server := rest.MustNewServer(c.RestConf, rest.WithCors(c.AllowedOrigins...))
	defer server.Stop()

	svcCtx, err := svc.NewServiceContext(c, svc.Collaborators{
		Deliverer: logDeliverer{},
	})
	if err != nil {
		panic(err)
	}
	defer svcCtx.Store.Close()

	server.Use(middleware.RequestID)
	handler.RegisterHandlers(server, svcCtx)

	// Background collaborators run for the life of the process; cancellation
	// rides the same defer chain as server.Stop.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svcCtx.SSO.RunSweeper(ctx, c.SSO.SweepInterval)
	workers := c.Webhook.WorkerCount
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		go svcCtx.WebhookWorker.Run(ctx, c.Webhook.PollInterval)
	}

	fmt.Printf("Starting server at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
