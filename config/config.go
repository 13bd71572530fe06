// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config reads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// AI endpoints.
	EmbeddingHost  string
	ChatHost       string
	EmbeddingModel string
	ChatModel      string
	AIAPIKey       string

	// Vector store.
	QdrantHost       string
	QdrantPort       int
	QdrantCollection string
	QdrantVectorSize int

	// Local storage.
	DBPath string

	// Slack.
	SlackBotToken string
	SlackBotUser  string
	SlackChannel  string

	// GitHub.
	GitHubToken string

	// Discourse.
	DiscourseAPIKey      string
	DiscourseAPIUsername string

	// HTTP server.
	ListenAddr string
}

// Load reads configuration from environment variables, applying
// defaults for optional fields. A .env file in the working directory
// is loaded first; variables already set take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		EmbeddingHost:  getEnv("LORECRAFT_EMBEDDING_HOST", "http://localhost:11434/v1"),
		ChatHost:       getEnv("LORECRAFT_CHAT_HOST", "http://localhost:11434/v1"),
		EmbeddingModel: getEnv("LORECRAFT_EMBEDDING_MODEL", "embeddinggemma"),
		ChatModel:      getEnv("LORECRAFT_CHAT_MODEL", "qwen2.5:3b"),
		AIAPIKey:       getEnv("LORECRAFT_AI_API_KEY", "none"),

		QdrantHost:       getEnv("LORECRAFT_QDRANT_HOST", "localhost"),
		QdrantCollection: getEnv("LORECRAFT_QDRANT_COLLECTION", "lorecraft"),

		DBPath: getEnv("LORECRAFT_DB_PATH", "./data/lorecraft"),

		SlackBotToken: os.Getenv("LORECRAFT_SLACK_BOT_TOKEN"),
		SlackBotUser:  os.Getenv("LORECRAFT_SLACK_BOT_USER"),
		SlackChannel:  os.Getenv("LORECRAFT_SLACK_CHANNEL"),

		GitHubToken: os.Getenv("LORECRAFT_GITHUB_TOKEN"),

		DiscourseAPIKey:      os.Getenv("LORECRAFT_DISCOURSE_API_KEY"),
		DiscourseAPIUsername: getEnv("LORECRAFT_DISCOURSE_API_USERNAME", "lorecraft"),

		ListenAddr: getEnv("LORECRAFT_LISTEN_ADDR", ":8080"),
	}

	var err error
	cfg.QdrantPort, err = getEnvInt("LORECRAFT_QDRANT_PORT", 6334)
	if err != nil {
		return nil, err
	}
	cfg.QdrantVectorSize, err = getEnvInt("LORECRAFT_QDRANT_VECTOR_SIZE", 768)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return parsed, nil
}
