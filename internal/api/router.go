package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/api/recovery"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/auth"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/events"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/health"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/moderation"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/services"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store"
)

// Deps carries everything the router needs; cmd wiring owns construction.
type Deps struct {
	Store      store.Store
	Authorizer auth.Authorizer
	Bus        *events.Bus
	Health     health.HealthChecker
	Log        zerolog.Logger
}

// NewRouter builds the full HTTP surface. Everything except the health
// endpoint sits behind bearer auth.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	userSvc := services.NewUserService(d.Store)
	boardSvc := services.NewBoardService(d.Store, d.Bus)
	memorySvc := services.NewMemoryService(d.Store, moderation.New(d.Log), d.Bus)
	draftSvc := services.NewDraftService(d.Store)

	healthHandler := NewHealthHandler(d.Health)
	userHandler := NewUserHandler(userSvc)
	boardHandler := NewBoardHandler(boardSvc)
	memoryHandler := NewMemoryHandler(memorySvc)
	draftHandler := NewDraftHandler(draftSvc)

	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	authed := router.PathPrefix("/api").Subrouter()
	authed.Use(auth.Middleware(d.Authorizer))

	// Account
	authed.HandleFunc("/me", userHandler.GetMe).Methods("GET")
	authed.HandleFunc("/me", userHandler.DeleteMe).Methods("DELETE")

	// Boards
	authed.HandleFunc("/boards", boardHandler.CreateBoard).Methods("POST")
	authed.HandleFunc("/boards", boardHandler.ListBoards).Methods("GET")
	authed.HandleFunc("/boards/join", boardHandler.JoinBoard).Methods("POST")
	authed.HandleFunc("/boards/{boardId}", boardHandler.GetBoard).Methods("GET")
	authed.HandleFunc("/boards/{boardId}", boardHandler.RenameBoard).Methods("PATCH")
	authed.HandleFunc("/boards/{boardId}", boardHandler.DeleteBoard).Methods("DELETE")
	authed.HandleFunc("/boards/{boardId}/members", boardHandler.ListMembers).Methods("GET")
	authed.HandleFunc("/boards/{boardId}/invites", boardHandler.CreateInvite).Methods("POST")
	authed.HandleFunc("/invites/{inviteId}/accept", boardHandler.AcceptInvite).Methods("POST")

	// Memories and comments
	authed.HandleFunc("/boards/{boardId}/memories", memoryHandler.CreateMemory).Methods("POST")
	authed.HandleFunc("/boards/{boardId}/memories", memoryHandler.ListMemories).Methods("GET")
	authed.HandleFunc("/memories/{memoryId}", memoryHandler.GetMemory).Methods("GET")
	authed.HandleFunc("/memories/{memoryId}", memoryHandler.DeleteMemory).Methods("DELETE")
	authed.HandleFunc("/memories/{memoryId}/like", memoryHandler.LikeMemory).Methods("PUT")
	authed.HandleFunc("/memories/{memoryId}/like", memoryHandler.UnlikeMemory).Methods("DELETE")
	authed.HandleFunc("/memories/{memoryId}/comments", memoryHandler.CreateComment).Methods("POST")
	authed.HandleFunc("/memories/{memoryId}/comments", memoryHandler.ListComments).Methods("GET")

	// Drafts (sync surface)
	authed.HandleFunc("/drafts", draftHandler.ListDrafts).Methods("GET")
	authed.HandleFunc("/drafts", draftHandler.DeleteAllDrafts).Methods("DELETE")
	authed.HandleFunc("/drafts/{draftId}", draftHandler.SaveDraft).Methods("PUT")
	authed.HandleFunc("/drafts/{draftId}", draftHandler.DeleteDraft).Methods("DELETE")
	authed.HandleFunc("/drafts/{draftId}/publish", memoryHandler.PublishDraft).Methods("POST")

	return router
}
