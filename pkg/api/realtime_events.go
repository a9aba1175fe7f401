package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/labstack/echo"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/api/resource"
)

// realtimeEventsHandler streams every fan-out event on the bus to an
// operations client. It requires the NATS bridge.
func (h *Handler) realtimeEventsHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.nc == nil {
			return c.JSON(http.StatusServiceUnavailable, resource.ErrorResponse{Error: "realtime events require the event bus"})
		}

		conn, _, _, err := ws.UpgradeHTTP(c.Request(), c.Response())
		if err != nil {
			log.Error("api: failed to upgrade to websocket: ", err)
			return nil
		}
		defer conn.Close()

		sub, err := h.nc.Subscribe("bustracker.v1.*.*", func(msg *nats.Msg) {

			// Get bus number and topic from NATS subject
			strippedSubject := strings.TrimPrefix(msg.Subject, "bustracker.v1.")
			s := strings.SplitN(strippedSubject, ".", 2)
			if len(s) != 2 {
				return
			}

			// Parse the message and send it
			var data interface{}
			if err := json.Unmarshal(msg.Data, &data); err == nil {
				event := resource.NewRealtimeEvent(s[0], s[1], data)
				out, _ := json.Marshal(event)
				if err := wsutil.WriteServerMessage(conn, ws.OpText, out); err != nil {
					log.Error("api: failed to send realtime event: ", err)
				}
			}

		})
		if err != nil {
			log.Error("api: failed to subscribe to realtime events: ", err)
			return nil
		}
		defer sub.Unsubscribe()

		// Block until the client goes away.
		for {
			if _, _, err := wsutil.ReadClientData(conn); err != nil {
				return nil
			}
		}
	}
}
