package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	_ "github.com/lib/pq"
	nats "github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/config"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/api"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/storage"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/storage/memory"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/storage/postgres"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/tracking"
)

type trackingServer struct {
	c      *config.Config
	quitCh chan bool
	doneCh chan bool

	nc    *nats.Conn
	store storage.Interface
	errCh chan error
}

func init() {
	formatter := &logrus.TextFormatter{
		FullTimestamp: true,
	}
	logrus.SetFormatter(formatter)

	// Output to stdout instead of the default stderr
	log.SetOutput(os.Stdout)

	// Only log the info severity or above.
	log.SetLevel(log.InfoLevel)
}

func newTrackingServer(c *config.Config) (*trackingServer, error) {
	s := &trackingServer{
		c:      c,
		quitCh: make(chan bool),
		doneCh: make(chan bool),

		errCh: make(chan error, 1),
	}

	// The NATS bridge is optional: a single serving process fans out
	// directly to its local rooms.
	if c.NATSServerURL != "" {
		nc, err := nats.Connect(c.NATSServerURL,
			nats.DrainTimeout(10*time.Second),
			nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
				log.Errorf("nats error: %s", err)
				s.errCh <- err
			}),
			nats.DisconnectHandler(func(_ *nats.Conn) {
				log.Warn("nats connection lost")
				syscall.Kill(syscall.Getpid(), syscall.SIGINT)
			}))
		if err != nil {
			return nil, err
		}
		s.nc = nc
	}

	if c.DatabaseURL != "" {
		db, err := sqlx.Open("postgres", c.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.Ping(); err != nil {
			return nil, err
		}
		s.store = postgres.NewStore(db)
	} else {
		log.Warn("no DATABASE_URL configured, using the in-memory session store")
		s.store = memory.NewStore()
	}

	return s, nil
}

func (s *trackingServer) Serve() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(logger())

	// Create the tracking controller and its fan-out hub
	hub := tracking.NewHub()
	ctrl := tracking.NewController(s.nc, s.store, hub, s.c.SessionTTL, s.c.StaleAfter)
	if s.nc != nil {
		if err := ctrl.Subscribe(); err != nil {
			log.Error("failed to subscribe to fan-out subjects: ", err)
		}
	}

	// The sweeper enforces the absolute session expiry independent of
	// request traffic.
	sweeper := tracking.NewSweeper(s.store, s.c.SweepInterval)
	sweeper.Start()

	// Register API endpoints
	handler := api.NewHandler(s.nc, s.store, ctrl)
	handler.RegisterRoutes(e)

	go func() {
		log.WithFields(log.Fields{
			"host": s.c.BindHost,
			"port": s.c.BindPort,
		}).Info("Starting server")

		if err := e.Start(fmt.Sprintf("%s:%d", s.c.BindHost, s.c.BindPort)); err != nil {
			e.Logger.Info("Shutting down the server")
		}
	}()

	// Wait until receiving the quit signal
	<-s.quitCh
	log.Info("Shutdown signal received")

	sweeper.Stop()

	// Create a 10 second timeout context
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown the echo web server
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Error(err)
	}

	// We've done!
	s.doneCh <- true
}

// logger returns a middleware that logs HTTP requests.
func logger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			var err error
			if err = next(c); err != nil {
				c.Error(err)
			}
			stop := time.Now()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = res.Header().Get(echo.HeaderXRequestID)
			}
			reqSizeStr := req.Header.Get(echo.HeaderContentLength)
			if reqSizeStr == "" {
				reqSizeStr = "0"
			}
			reqSize, err := strconv.ParseInt(reqSizeStr, 10, 0)
			if err != nil {
				reqSize = -1
			}
			errMsg := ""
			if err != nil {
				errMsg = err.Error()
			}

			log.WithFields(log.Fields{
				"timestamp":     stop.Format(time.RFC3339),
				"id":            id,
				"remote_ip":     c.RealIP(),
				"host":          req.Host,
				"method":        req.Method,
				"uri":           req.RequestURI,
				"protocol":      req.Proto,
				"user_agent":    req.UserAgent(),
				"status":        res.Status,
				"status_text":   http.StatusText(res.Status),
				"referer":       req.Referer(),
				"error":         errMsg,
				"bytes_in":      reqSize,
				"bytes_out":     res.Size,
				"latency":       stop.Sub(start).Nanoseconds(),
				"latency_human": stop.Sub(start).String(),
			}).Infof("%s %s %s %d %s", req.Method, req.RequestURI, req.Proto,
				res.Status, strconv.FormatInt(res.Size, 10))

			return err
		}
	}
}

func (s *trackingServer) Shutdown() {
	if s.nc != nil {
		s.nc.Drain()
	}

	// Send the quit signal to the server.Serve() routine
	s.quitCh <- true

	// Wait up to 10 seconds
	select {
	case <-s.doneCh:
		log.Info("Shutdown server successful")
	case <-time.After(10 * time.Second):
		log.Error("Shutdown server failed")
	}
}

func RunServeTracking(c *config.Config) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		s, err := newTrackingServer(c)
		if err != nil {
			log.Error("failed to create new server instance: ", err)
			os.Exit(1)
		}

		go s.Serve()

		// Wait for interrupt signal to gracefully shutdown the server
		quitCh := make(chan os.Signal, 1)
		signal.Notify(quitCh, os.Interrupt)
		<-quitCh

		// Shutdown the server
		s.Shutdown()
	}
}
