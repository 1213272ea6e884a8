package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"PPRelay/global"
	"PPRelay/logger"
	"PPRelay/service/bridge"
	"PPRelay/service/relay"
	"PPRelay/service/relay/handlers"
	"PPRelay/service/storage"
	"PPRelay/service/store"
)

func main() {
	global.Load()
	global.ConfigIds()

	s := relay.NewServer(relay.Options{
		NodeID:        global.Global.NodeID,
		SendQueueSize: global.Global.SendQueueSize,
		FanoutWorkers: global.Global.FanoutWorkers,
		FanoutQueue:   global.Global.FanoutQueue,
		RateLimit: relay.RateLimiterConf{
			Limit:  global.Global.RateLimit,
			Window: global.RateWindow(),
		},
		PresenceTTL: global.PresenceTTL(),
	})
	handlers.RegisterAll(s)

	// redis presence 镜像（best-effort：连不上照常跑，只是没有跨节点在线查询）
	if err := global.ConfigRedis(); err != nil {
		logger.Warnf("[Boot] redis unavailable, presence mirror disabled: %v", err)
	} else {
		s.SetMirror(storage.Mirror{})
	}

	// mongo 消息落库（配置了 MONGO_URI 才启用）
	var msgStore *store.MongoStore
	if global.Global.Mongo.Uri != "" {
		st, err := store.NewMongoStore(context.Background(), store.Config{
			Uri:        global.Global.Mongo.Uri,
			Database:   global.Global.Mongo.Database,
			Collection: global.Global.Mongo.Collection,
		})
		if err != nil {
			logger.Warnf("[Boot] mongo unavailable, message persistence disabled: %v", err)
		} else {
			s.SetStore(st)
			msgStore = st
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				_ = st.Close(ctx)
			}()
		}
	}

	// nats bridge（配置了 NATS_SERVERS 才启用跨节点扩散和推送通知）
	if len(global.Global.Nats.Servers) > 0 {
		b, err := bridge.NewNatsBridge(bridge.Config{
			Servers: global.Global.Nats.Servers,
			Name:    global.Global.Nats.Name,
		}, global.Global.NodeID, s)
		if err != nil {
			logger.Warnf("[Boot] nats unavailable, cluster bridge disabled: %v", err)
		} else {
			s.SetBridge(b)
			s.SetNotifier(bridge.NewNatsNotifier(b))
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ws", s.HandleWS) // e.g. ws://localhost:8080/ws

	// 新成员补历史（需要 mongo）
	r.GET("/rooms/:id/history", func(c *gin.Context) {
		if msgStore == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history store disabled"})
			return
		}
		limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
		msgs, err := msgStore.History(c.Request.Context(), c.Param("id"), limit)
		if err != nil {
			logger.Warnf("[HTTP] history room=%s err=%v", c.Param("id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "history query failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"room": c.Param("id"), "messages": msgs})
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"node":   s.NodeID(),
			"conns":  s.ConnMgr().Count(),
			"online": len(s.Presence().OnlineUsers()),
		})
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", global.Global.Port),
		Handler: r,
	}

	go func() {
		logger.Infof("[Boot] relay gateway node=%s listening on %s", s.NodeID(), srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("[Boot] http server: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("[Boot] shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warnf("[Boot] http shutdown: %v", err)
	}
	s.Close()
}
