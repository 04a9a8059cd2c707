package routes

import (
	"log"
	"net/http"

	"quizzesapi/events"
	"quizzesapi/handlers"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var topics = map[string]bool{"": true, "user": true, "quiz": true, "question": true}

func SetupRoutes(
	router *gin.Engine,
	userHandler *handlers.UserHandler,
	quizHandler *handlers.QuizHandler,
	questionHandler *handlers.QuestionHandler,
	hub *events.Hub,
) {
	users := router.Group("/users")
	{
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
		users.GET("/:id/quizzes", quizHandler.GetUserQuizzes)
	}

	quizzes := router.Group("/quizzes")
	{
		quizzes.POST("", quizHandler.CreateQuiz)
		quizzes.GET("/:id", quizHandler.GetQuizByID)
	}

	questions := router.Group("/questions")
	{
		questions.GET("", questionHandler.ListQuestions)
		questions.POST("", questionHandler.CreateQuestion)
		questions.GET("/:id", questionHandler.GetQuestionByID)
	}

	// Change feed; ?topic=user|quiz|question narrows it to one resource.
	router.GET("/ws/events", func(c *gin.Context) {
		topic := c.Query("topic")
		if !topics[topic] {
			c.JSON(http.StatusBadRequest, "Unknown topic: "+topic)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}
		hub.RegisterClient(conn, topic)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
