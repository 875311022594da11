package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/oarlockdev/boathouse-backend/internal/api"
	"github.com/oarlockdev/boathouse-backend/internal/auth"
	"github.com/oarlockdev/boathouse-backend/internal/boat"
	"github.com/oarlockdev/boathouse-backend/internal/booking"
	"github.com/oarlockdev/boathouse-backend/internal/member"
	"github.com/oarlockdev/boathouse-backend/internal/notice"
	"github.com/oarlockdev/boathouse-backend/internal/notify"
	"github.com/oarlockdev/boathouse-backend/internal/pkg/clock"
	"github.com/oarlockdev/boathouse-backend/internal/sweep"
	"github.com/oarlockdev/boathouse-backend/internal/template"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Logger       *zap.Logger
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int

	EarliestBookingStart string
	ConfirmNoticeDays    int
	AutoCancelDays       int
	ClubTimezone         *time.Location
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Sweep      *sweep.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	notifier := notify.NewLogNotifier(cfg.Logger)

	earliestStart, err := clock.Parse(cfg.EarliestBookingStart)
	if err != nil {
		return nil, err
	}

	// Member Module
	memberRepo := member.NewPgxRepository(cfg.DBPool)
	memberService := member.NewService(memberRepo, passwordHasher)

	// Boat Module
	boatRepo := boat.NewPgxRepository(cfg.DBPool)
	boatService := boat.NewService(boatRepo)

	// Booking Module. The template repository doubles as the conflict
	// checker that guards one-off bookings against recurring slots.
	templateRepo := template.NewPgxRepository(cfg.DBPool, cfg.ClubTimezone)
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, boatService, templateRepo, earliestStart, cfg.ClubTimezone)

	// Template Module
	templateService := template.NewService(templateRepo, bookingService, cfg.ClubTimezone)

	// Notice Module
	noticeRepo := notice.NewPgxRepository(cfg.DBPool)
	noticeService := notice.NewService(noticeRepo)

	// Background Sweep
	sweepService := sweep.NewService(
		bookingService,
		templateService,
		templateRepo,
		notifier,
		cfg.Logger,
		cfg.ConfirmNoticeDays,
		cfg.AutoCancelDays,
		cfg.ClubTimezone,
	)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		ClubTimezone:    cfg.ClubTimezone,
		MemberService:   memberService,
		BoatService:     boatService,
		BookingService:  bookingService,
		TemplateService: templateService,
		NoticeService:   noticeService,
		SweepService:    sweepService,
		JWTManager:      jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Sweep:      sweepService,
	}, nil
}
