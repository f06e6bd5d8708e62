package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/teamdesk/internal/handlers"
	"github.com/thereayou/teamdesk/internal/middleware"
	"github.com/thereayou/teamdesk/internal/models"
	"github.com/thereayou/teamdesk/pkg/auth"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	User       *handlers.UserHandler
	Chat       *handlers.ChatHandler
	Project    *handlers.ProjectHandler
	Note       *handlers.NoteHandler
	Member     *handlers.MemberHandler
	Department *handlers.DepartmentHandler
	Dashboard  *handlers.DashboardHandler
	WebSocket  *handlers.WebSocketHandler
}

// NewRouter собирает gin с общими middleware и всеми маршрутами
func NewRouter(log *zap.Logger, h Handlers, jwtMgr *auth.JWTManager, revocations middleware.RevocationChecker, timeout time.Duration) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(log), middleware.RequestLogger(log), middleware.ErrorHandler(log))
	router.NoRoute(middleware.NotFound)

	APIEndpoints(router, h, jwtMgr, revocations, timeout)
	return router
}

func APIEndpoints(r *gin.Engine, h Handlers, jwtMgr *auth.JWTManager, revocations middleware.RevocationChecker, timeout time.Duration) {
	authMW := middleware.AuthMiddleware(jwtMgr, revocations)
	leaderOnly := middleware.RequireRole(models.RoleLeader)
	withTimeout := middleware.RequestTimeout(timeout)

	teams := r.Group("/teams", withTimeout)
	{
		teams.POST("/register", h.Auth.RegisterTeam)
		teams.POST("/:teamId/departments", authMW, leaderOnly, h.Department.CreateTeamDepartment)
	}

	users := r.Group("/users", withTimeout)
	{
		users.POST("/register", h.Auth.RegisterUser)
		users.POST("/login", h.Auth.Login)

		protected := users.Group("", authMW)
		protected.POST("/logout", h.Auth.Logout)
		protected.GET("/me", h.User.GetMe)
		protected.GET("/notifications", h.User.GetNotifications)
		protected.PATCH("/notifications/read-all", h.User.MarkAllNotificationsRead)
		protected.PATCH("/notifications/:id/read", h.User.MarkNotificationRead)

		// Состав команды
		protected.GET("/team-members", h.Member.GetTeamMembers)
		protected.GET("/pending", leaderOnly, h.Member.GetPendingUsers)
		protected.POST("/create", leaderOnly, h.Member.CreateMember)
		protected.PATCH("/:id/approve", leaderOnly, h.Member.ApproveUser)
		protected.DELETE("/:id/reject", leaderOnly, h.Member.RejectUser)
		protected.PATCH("/:id/role", leaderOnly, h.Member.UpdateRole)
	}

	departments := r.Group("/departments", withTimeout, authMW)
	{
		departments.GET("", h.Department.GetDepartments)
		departments.GET("/:departmentId", h.Department.GetDepartment)
		departments.POST("", leaderOnly, h.Department.CreateDepartment)
		departments.PATCH("/:departmentId", leaderOnly, h.Department.UpdateDepartment)
		departments.DELETE("/:departmentId", leaderOnly, h.Department.DeleteDepartment)
	}

	r.GET("/dashboard/stats", withTimeout, authMW, h.Dashboard.GetStats)

	chats := r.Group("/chats", withTimeout, authMW)
	{
		chats.POST("/rooms/create", h.Chat.CreateChatRoom)
		chats.GET("/rooms/:teamId", h.Chat.GetChatRooms)
		chats.POST("/rooms/members/add", h.Chat.AddMember)
		chats.GET("/messages/:chatRoomId", h.Chat.GetMessages)
		chats.POST("/messages", h.Chat.SendMessage)
		chats.POST("/messages/seen", h.Chat.MarkSeen)
		chats.GET("/online-users/:teamId", h.Chat.GetOnlineUsers)
	}

	projects := r.Group("/projects", withTimeout, authMW)
	{
		// Заметки
		projects.POST("/notes", h.Note.CreateNote)
		projects.PATCH("/notes/:noteId", h.Note.UpdateNote)
		projects.GET("/notes/:noteId/history", h.Note.GetNoteHistory)
		projects.DELETE("/notes/:noteId", leaderOnly, h.Note.DeleteNote)

		projects.POST("", leaderOnly, h.Project.CreateProject)
		projects.GET("/:projectId", h.Project.GetProject)
		projects.GET("/:projectId/notes", h.Note.GetProjectNotes)
		projects.POST("/:projectId/assign", leaderOnly, h.Project.AssignUser)
		projects.DELETE("/assignments/:assignmentId", leaderOnly, h.Project.RemoveAssignment)
		projects.PATCH("/:projectId/phase-status", leaderOnly, h.Project.UpdatePhaseStatus)
		projects.DELETE("/:projectId", leaderOnly, h.Project.DeleteProject)

		// Статусы
		projects.POST("/:projectId/status", leaderOnly, h.Project.UpdateStatus)
		projects.GET("/:projectId/status-history", h.Project.GetStatusHistory)
	}

	// WebSocket живёт дольше любого таймаута запроса
	r.GET("/ws", middleware.WSAuthMiddleware(jwtMgr, revocations), h.WebSocket.HandleWebSocket)
}
