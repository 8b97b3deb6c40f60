package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterOptions 控制中间件。
type RouterOptions struct {
	// Dev 模式下启用 CORS，允许前端开发服务器直接访问。
	Dev         bool
	CORSOrigins []string
}

// NewRouter 创建 gin 引擎并注册 /healthz 与 /api/v1 路由。
func NewRouter(svc *Service, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if opts.Dev {
		origins := opts.CORSOrigins
		if len(origins) == 0 {
			origins = []string{"http://localhost:3000"}
		}
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	RegisterRoutes(r.Group("/api/v1"), svc)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, newErrDTO(ErrNotFound("no route "+c.Request.URL.Path)))
	})
	return r
}
