package api

import "github.com/linkmarket/link-server/internal/service"

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth        *service.AuthService
	User        *service.UserService
	Listing     *service.ListingService
	Feed        *service.FeedService
	Search      *service.SearchService
	Interaction *service.InteractionService
	Repost      *service.RepostService
	Comment     *service.CommentService
	Admin       *service.AdminService
}
