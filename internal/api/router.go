package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/membermatters/memberportal/internal/api/v1"
	"github.com/membermatters/memberportal/internal/config"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/membermatters/memberportal/internal/rest/middleware"
)

type Handlers struct {
	Health       *v1.HealthHandler
	Member       *v1.MemberHandler
	BillingGroup *v1.BillingGroupHandler
	Addon        *v1.AddonHandler
	Plan         *v1.PlanHandler
	Settings     *v1.SettingsHandler
	Portal       *v1.PortalHandler
	Webhook      *v1.WebhookHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Provider webhooks, raw payload, no auth middleware
	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/stripe", handlers.Webhook.HandleStripeWebhook)
	}

	// Admin surface
	admin := router.Group("/admin")
	{
		members := admin.Group("/members")
		{
			members.POST("", handlers.Member.CreateMember)
			members.GET("", handlers.Member.ListMembers)
			members.GET("/:id", handlers.Member.GetMember)
			members.GET("/:id/billing", handlers.Member.BillingInfo)
		}

		groups := admin.Group("/billing-groups")
		{
			groups.POST("", handlers.BillingGroup.CreateBillingGroup)
			groups.GET("", handlers.BillingGroup.ListBillingGroups)
			groups.GET("/:id", handlers.BillingGroup.GetBillingGroup)
			groups.PUT("/:id", handlers.BillingGroup.UpdateBillingGroup)
			groups.DELETE("/:id", handlers.BillingGroup.DeleteBillingGroup)
			groups.POST("/:id/members", handlers.BillingGroup.MemberAction)
			groups.POST("/:id/invites", handlers.BillingGroup.InviteAction)
		}
		admin.POST("/billing-groups-reconcile", handlers.BillingGroup.ReconcileLocks)

		addons := admin.Group("/addons")
		{
			addons.POST("", handlers.Addon.CreateAddon)
			addons.GET("", handlers.Addon.ListAddons)
			addons.GET("/:id", handlers.Addon.GetAddon)
			addons.PUT("/:id", handlers.Addon.UpdateAddon)
			addons.DELETE("/:id", handlers.Addon.ArchiveAddon)
			addons.POST("/:id/sync", handlers.Addon.SyncAddon)
		}

		plans := admin.Group("/plans")
		{
			plans.POST("", handlers.Plan.CreatePlan)
			plans.GET("", handlers.Plan.ListPlans)
			plans.GET("/:id", handlers.Plan.GetPlan)
			plans.PUT("/:id", handlers.Plan.UpdatePlan)
			plans.DELETE("/:id", handlers.Plan.ArchivePlan)
		}

		admin.GET("/settings", handlers.Settings.GetSettings)
		admin.PUT("/settings", handlers.Settings.UpdateSettings)
	}

	// Member self-service surface
	portal := router.Group("/portal", middleware.MemberContextMiddleware)
	{
		portal.GET("/plans", handlers.Plan.ListVisiblePlans)

		group := portal.Group("/billing-group")
		{
			group.GET("", handlers.Portal.GetOwnGroup)
			group.POST("", handlers.Portal.CreateOwnGroup)
			group.DELETE("", handlers.Portal.DeleteOwnGroup)
			group.POST("/members", handlers.Portal.AddGroupMember)
			group.DELETE("/members", handlers.Portal.RemoveGroupMember)
			group.POST("/invite", handlers.Portal.InviteDecision)
		}

		subscription := portal.Group("/subscription")
		{
			subscription.GET("", handlers.Portal.SubscriptionInfo)
			subscription.POST("", handlers.Portal.Signup)
			subscription.POST("/cancel", handlers.Portal.CancelSubscription)
			subscription.POST("/resume", handlers.Portal.ResumeSubscription)
		}

		portal.POST("/billing/card", handlers.Portal.AttachCard)
		portal.DELETE("/billing/card", handlers.Portal.DetachCard)
		portal.GET("/billing", handlers.Portal.BillingInfo)
	}
}
