package query

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/canopy-network/statusdim/app/query/controller"
	"github.com/canopy-network/statusdim/app/query/types"
	"github.com/canopy-network/statusdim/pkg/settings"
	"github.com/canopy-network/statusdim/pkg/utils"
)

// NewServer builds the HTTP server of app on ADDR.
func NewServer(app *types.App) error {
	cfg, err := settings.HistoryFromEnv()
	if err != nil {
		return err
	}
	ctler := controller.NewController(app, DefaultMode(cfg))
	router, err := ctler.NewRouter()
	if err != nil {
		return err
	}

	// use <ip>:<port> to bind to a specific interface or :<port> to bind to all interfaces
	addr := utils.Env("ADDR", ":3001")

	app.Server = &http.Server{Addr: addr, Handler: controller.WithCORS(router)}
	app.Logger.Info("Starting server", zap.String("addr", addr))

	return nil
}
