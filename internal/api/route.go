package api

import (
	"Agora/internal/api/middleware"
	"Agora/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		postGroup := apiGroup.Group("/posts")
		{
			authOptGroup := postGroup.Group("")
			authOptGroup.Use(middleware.AuthOptionalMiddleware())
			{
				authOptGroup.GET("/list", group.PostHandler.ListPosts)
				authOptGroup.GET("/detail/:post_id", group.PostHandler.GetPostDetail)
				authOptGroup.GET("/:post_id/state", group.PostActionHandler.GetPostActionState)
				authOptGroup.GET("/:post_id/comments", group.CommentHandler.GetCommentTree)
			}

			authGroup := postGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("", group.PostHandler.CreatePost)
				authGroup.PUT("/:post_id", group.PostHandler.UpdatePost)
				authGroup.DELETE("/:post_id", group.PostHandler.DeletePost)

				authGroup.POST("/:post_id/vote", group.PostActionHandler.Vote)
				authGroup.POST("/:post_id/like", group.PostActionHandler.LikePost)
				authGroup.POST("/:post_id/save", group.PostActionHandler.SavePost)
				authGroup.DELETE("/:post_id/save", group.PostActionHandler.UnsavePost)
				authGroup.POST("/:post_id/report", group.PostActionHandler.ReportPost)

				authGroup.GET("/saved", group.PostHandler.GetBookmarkedPosts)
			}
		}

		commentGroup := apiGroup.Group("/comments")
		commentGroup.Use(middleware.AuthMiddleware())
		{
			commentGroup.POST("", group.CommentHandler.CreateComment)
			commentGroup.DELETE("/:comment_id", group.CommentHandler.DeleteComment)
			commentGroup.POST("/:comment_id/like", group.CommentHandler.LikeComment)
			commentGroup.DELETE("/:comment_id/like", group.CommentHandler.UnlikeComment)
			commentGroup.POST("/:comment_id/report", group.PostActionHandler.ReportComment)
		}

		mediaGroup := apiGroup.Group("/media")
		mediaGroup.Use(middleware.AuthMiddleware())
		{
			mediaGroup.POST("/upload", group.MediaHandler.Upload)
		}
	}

	return r
}
