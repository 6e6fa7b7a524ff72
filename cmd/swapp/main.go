package main

import (
	"bitbucket.org/sotavant/quick-swapp/internal/auth"
	"bitbucket.org/sotavant/quick-swapp/internal/inbox"
	"bitbucket.org/sotavant/quick-swapp/internal/logger"
	"bitbucket.org/sotavant/quick-swapp/internal/metrics"
	"bitbucket.org/sotavant/quick-swapp/internal/notify"
	"bitbucket.org/sotavant/quick-swapp/internal/store"
	"bitbucket.org/sotavant/quick-swapp/internal/store/memory"
	"bitbucket.org/sotavant/quick-swapp/internal/store/pg"
	"bitbucket.org/sotavant/quick-swapp/internal/store/redis"
	"context"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"net/http"
	"strings"
)

func main() {
	parseFlags()
	if err := run(); err != nil {
		panic(err)
	}
}

func gzipMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		contentEncoding := c.GetHeader("Content-Encoding")
		sendsGzip := strings.Contains(contentEncoding, "gzip")
		if sendsGzip {
			cr, err := newCompressReader(c.Request.Body)
			if err != nil {
				logger.Log.Debug("newCompressReaderError", zap.Error(err))
				c.AbortWithStatus(http.StatusBadRequest)
				return
			}
			c.Request.Body = cr
			defer func(cr *compressReader) {
				if err := cr.Close(); err != nil {
					logger.Log.Debug("closeCompressReaderError", zap.Error(err))
				}
			}(cr)
		}

		acceptEncoding := c.GetHeader("Accept-Encoding")
		supportGzip := strings.Contains(acceptEncoding, "gzip")
		if supportGzip {
			c.Header("Content-Encoding", "gzip")
			cw := newCompressWriter(c.Writer)
			c.Writer = cw
			defer func(cw *compressWriter) {
				if err := cw.Close(); err != nil {
					logger.Log.Debug("compressWriterError", zap.Error(err))
				}
			}(cw)
		}

		c.Next()
	}
}

func run() error {
	if err := logger.Initialize(flagLogLevel); err != nil {
		return err
	}
	if flagJWTSecret == "" {
		return errors.New("jwt secret is required (-s or JWT_SECRET)")
	}

	ctx := context.Background()

	var messages store.Store
	var watermarks store.WatermarkStore

	mem := memory.New()
	messages, watermarks = mem, mem

	if flagDatabaseURI != "" {
		pgStore, err := pg.New(ctx, flagDatabaseURI)
		if err != nil {
			return err
		}
		defer pgStore.Close()
		if err := pgStore.Bootstrap(ctx); err != nil {
			return err
		}
		messages = pgStore
	} else {
		logger.Log.Warn("no database configured, messages are kept in memory")
	}

	if flagRedisAddr != "" {
		wmStore, err := redis.New(redis.Config{Addr: flagRedisAddr, PoolSize: 10})
		if err != nil {
			return err
		}
		defer wmStore.Close()
		watermarks = wmStore
	}

	var publisher notify.Publisher = notify.Nop{}
	if flagNatsURL != "" {
		nc, err := notify.Connect(flagNatsURL, "quick-swapp")
		if err != nil {
			return err
		}
		defer nc.Close()
		publisher = nc
	}

	appInstance := newApp(inbox.New(messages, watermarks, publisher))

	gin.SetMode(gin.ReleaseMode)
	r := newRouter(appInstance, []byte(flagJWTSecret))

	logger.Log.Info("Running server", zap.String("address", flagRunAddr))

	return http.ListenAndServe(flagRunAddr, r)
}

func newRouter(a *app, secret []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger(), gzipMiddleware())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api", auth.Middleware(secret))
	api.POST("/conversations", a.startConversation)
	api.GET("/conversations", a.listConversations)
	api.GET("/conversations/:id/messages", a.thread)
	api.POST("/messages", a.sendMessage)
	api.GET("/unread", a.unread)

	return r
}
