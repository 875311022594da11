package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oarlockdev/boathouse-backend/internal/auth"
	"github.com/oarlockdev/boathouse-backend/internal/boat"
	boatHttp "github.com/oarlockdev/boathouse-backend/internal/boat/http"
	"github.com/oarlockdev/boathouse-backend/internal/booking"
	bookingHttp "github.com/oarlockdev/boathouse-backend/internal/booking/http"
	"github.com/oarlockdev/boathouse-backend/internal/member"
	memberHttp "github.com/oarlockdev/boathouse-backend/internal/member/http"
	"github.com/oarlockdev/boathouse-backend/internal/notice"
	noticeHttp "github.com/oarlockdev/boathouse-backend/internal/notice/http"
	"github.com/oarlockdev/boathouse-backend/internal/sweep"
	"github.com/oarlockdev/boathouse-backend/internal/template"
	templateHttp "github.com/oarlockdev/boathouse-backend/internal/template/http"
)

// Config holds the services and settings the router assembles.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	ClubTimezone *time.Location

	MemberService   member.Service
	BoatService     boat.Service
	BookingService  booking.Service
	TemplateService template.Service
	NoticeService   notice.Service
	SweepService    *sweep.Service
	JWTManager      *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	adminMiddleware := RequireAdmin(cfg.MemberService)

	memberHandler := memberHttp.NewHandler(cfg.MemberService, cfg.JWTManager)
	boatHandler := boatHttp.NewHandler(cfg.BoatService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.MemberService)
	templateHandler := templateHttp.NewHandler(cfg.TemplateService, cfg.MemberService, cfg.ClubTimezone)
	noticeHandler := noticeHttp.NewHandler(cfg.NoticeService)

	v1 := r.Group("/v1")
	{
		memberHttp.RegisterRoutes(v1, memberHandler, authMiddleware, adminMiddleware)
		boatHttp.RegisterRoutes(v1, boatHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		templateHttp.RegisterRoutes(v1, templateHandler, authMiddleware, adminMiddleware)
		noticeHttp.RegisterRoutes(v1, noticeHandler, authMiddleware, adminMiddleware)

		v1.POST("/sweeps/run", authMiddleware, adminMiddleware, RunSweep(cfg.SweepService))
	}

	return r
}

func splitOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
