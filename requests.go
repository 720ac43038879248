package main

import (
	"fmt"
	"os"

	"sound-garage/authentication"
	"sound-garage/controllers"
	"sound-garage/middleware"
)

func handleRequests() {
	router.Use(middleware.CORSMiddleware())

	router.GET("/lookups", controllers.ListLookups)

	// auth-related
	router.POST("/login", controllers.Login)
	router.POST("/logout", authentication.TokenAuthMiddleware(), controllers.Logout)
	router.POST("/refresh", controllers.Refresh) // do not check if the AT is still valid (no middleware)
	router.POST("/register", controllers.Register)

	router.POST("/user/exists", controllers.UserExists)
	router.POST("/email/exists", controllers.EMailExists)

	// user-mgmt
	router.GET("/users/:id", authentication.TokenAuthMiddleware(), controllers.GetUser)
	router.POST("/user/changePass", authentication.TokenAuthMiddleware(), controllers.ChangePassword)
	router.POST("/user/verifyPass", authentication.TokenAuthMiddleware(), controllers.VerifyPassword)

	// own profile stuff - no calls for other users intended (hence no param)
	// reactions are open to guests presenting their session key
	router.GET("/user/reactions", controllers.GetUserReactions)
	router.GET("/user/follows", authentication.TokenAuthMiddleware(), controllers.GetFollowedArtists)

	// artists
	// GET carries no BODY (Go/Gin & Postman would support that, Angular does not) - hence query params
	router.GET("/artists", controllers.ListArtists)
	router.GET("/artists/:id", controllers.GetArtist)
	router.POST("/artists", authentication.TokenAuthMiddleware(), controllers.AddArtist)
	router.PUT("/artists/:id", authentication.TokenAuthMiddleware(), controllers.UpdateArtist)
	router.GET("/artists/:id/tracks", controllers.GetArtistTracks)
	router.GET("/artists/:id/followers", controllers.GetArtistFollowers)
	router.POST("/artists/:id/follow", authentication.TokenAuthMiddleware(), controllers.FollowArtist)
	router.DELETE("/artists/:id/follow", authentication.TokenAuthMiddleware(), controllers.UnfollowArtist)

	// tracks
	router.GET("/tracks", controllers.ListTracks)
	router.GET("/tracks/:id", controllers.GetTrack)
	router.POST("/tracks", authentication.TokenAuthMiddleware(), controllers.AddTrack)
	router.PUT("/tracks/:id", authentication.TokenAuthMiddleware(), controllers.UpdateTrack)
	router.DELETE("/tracks/:id", authentication.TokenAuthMiddleware(), controllers.DeleteTrack)
	// statistics
	router.POST("/tracks/:id/play", controllers.PlayTrack)
	router.GET("/tracks/:id/plays", controllers.GetTrackPlays)
	router.GET("/tracks/:id/listeners", controllers.CountTrackListeners)
	router.GET("/stats/tracks/:id/listeners", authentication.TokenAuthMiddleware(), controllers.ListTrackListeners)

	// feedback aggregator - reacting is open to guests (session-based identity)
	router.POST("/reactions", controllers.CastReaction)
	router.PUT("/reactions/:id", controllers.UpdateReaction)
	router.DELETE("/reactions/:id", controllers.DeleteReaction)
	router.GET("/tracks/:id/stats", controllers.GetFeedbackStats)
	router.GET("/tracks/:id/reaction", controllers.GetUserReaction)
	router.GET("/tracks/:id/reactions", controllers.GetTrackReactions)

	// trending ranker & discovery stream
	router.GET("/trending", controllers.GetTrendingTracks)
	router.GET("/stream", controllers.GetFeedbackStream)
	router.POST("/trending/compute", authentication.TokenAuthMiddleware(), controllers.ComputeTrending)

	// playlists
	router.GET("/playlists/:id", controllers.GetPlaylist)
	router.GET("/users/:id/playlists", controllers.GetUserPlaylists)
	router.POST("/playlists", authentication.TokenAuthMiddleware(), controllers.AddPlaylist)
	router.POST("/playlists/:id/tracks", authentication.TokenAuthMiddleware(), controllers.AddPlaylistTrack)
	router.DELETE("/playlists/:id/tracks/:trackId", authentication.TokenAuthMiddleware(), controllers.RemovePlaylistTrack)
	router.DELETE("/playlists/:id", authentication.TokenAuthMiddleware(), controllers.DeletePlaylist)

	// system tools
	router.GET("/monitor/requests/count", authentication.TokenAuthMiddleware(), controllers.CountRequests)
	router.GET("/monitor/requests/dump", authentication.TokenAuthMiddleware(), controllers.DumpRequests)
	router.POST("/monitor/requests/flush", authentication.TokenAuthMiddleware(), controllers.FlushRequests)

	switch os.Getenv("APP_ENV") {
	case "DEV":
		router.Run(":" + os.Getenv("API_PORT"))
	case "PRD":
		router.RunTLS(":"+os.Getenv("API_PORT"), os.Getenv("APP_CERTFILE"), os.Getenv("APP_KEYFILE"))
	default:
		panic(fmt.Errorf("APP_ENV not set"))
	}
}
