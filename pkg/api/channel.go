package api

import (
	"github.com/gobwas/ws"
	"github.com/labstack/echo"
	log "github.com/sirupsen/logrus"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/tracking/websocket"
)

func (h *Handler) trackingChannelHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, _, _, err := ws.UpgradeHTTP(c.Request(), c.Response())
		if err != nil {
			return err
		}
		defer conn.Close()

		terminateCh := make(chan struct{})
		driver := websocket.NewDriver(conn, terminateCh)
		driver.Start()
		defer driver.Close()

		ch := h.ctrl.NewChannel(driver)
		defer ch.Close()

		<-terminateCh

		log.Debug("handler exit tracking channel handler func")
		return nil
	}
}
