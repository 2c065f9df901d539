package main

import (
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/thereayou/duetchat/internal/database"
	"github.com/thereayou/duetchat/internal/models"
	"github.com/thereayou/duetchat/internal/suggestions"
)

// Корпус подсказок по категориям. Категория general добирает реплики,
// когда по конкретной теме их не хватает.
var corpus = map[string]struct {
	Starters []string
	Replies  []string
}{
	"romantic": {
		Starters: []string{
			"If our love story were a movie, what would it be called?",
			"What was the first thing you liked about me?",
			"What would a perfect date night look like for you?",
			"Which song describes our relationship perfectly?",
			"What's the most memorable moment we've had so far?",
		},
		Replies: []string{
			"Aww, that's so sweet!",
			"Hearing that made my day.",
			"I was thinking exactly the same thing.",
			"You're so thoughtful!",
			"I feel the same way.",
		},
	},
	"food": {
		Starters: []string{
			"What's one dish you could eat every single day?",
			"What's the strangest thing you've ever tried?",
			"Do you prefer sweet or spicy food?",
			"Home cooking or eating out?",
			"What's one thing you would never eat?",
		},
		Replies: []string{
			"Wow, foodie alert!",
			"My mouth is watering already!",
			"We should definitely try that together.",
			"That sounds delicious!",
			"I'm always up for food adventures.",
		},
	},
	"gardening": {
		Starters: []string{
			"What's your favorite plant and why?",
			"Do you prefer indoor or outdoor plants?",
			"Have you ever grown your own vegetables?",
			"What's the most rewarding part of gardening for you?",
			"What would your dream garden look like?",
		},
		Replies: []string{
			"Being close to nature feels so good, doesn't it?",
			"That's so calming and therapeutic.",
			"I'd love to learn gardening too.",
			"Plants make any space beautiful.",
			"It's amazing to watch things grow.",
		},
	},
	"singing": {
		Starters: []string{
			"What's your go-to karaoke song?",
			"Which singer would you love to see live?",
			"Bathroom singer or stage performer?",
			"If you started a band, what would you call it?",
			"How does listening to music make you feel?",
		},
		Replies: []string{
			"Nice, I have to hear you sing sometime!",
			"Music is life!",
			"That song is my favorite too.",
			"That's a great choice of song.",
			"Let's have a jam session sometime!",
		},
	},
	suggestions.GeneralCategory: {
		Starters: []string{
			"How is your day going?",
			"Learned anything new lately?",
			"If you got one superpower, which would you pick?",
		},
		Replies: []string{
			"Interesting! Tell me more about that.",
			"Haha, seriously?",
			"I can relate to that.",
			"What happened after that?",
			"That's a good point.",
			"That's cool.",
			"I agree.",
			"Tell me more.",
		},
	},
}

func main() {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	dbConn := &database.Database{}
	if err := dbConn.Connect(); err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	var rows []models.Suggestion
	for category, data := range corpus {
		for _, text := range data.Starters {
			rows = append(rows, models.Suggestion{
				Category: category,
				Kind:     string(suggestions.KindStarter),
				Text:     text,
			})
		}
		for _, text := range data.Replies {
			rows = append(rows, models.Suggestion{
				Category: category,
				Kind:     string(suggestions.KindReply),
				Text:     text,
			})
		}
	}

	if err := dbConn.ReplaceSuggestions(rows); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d suggestions", len(rows))
}
