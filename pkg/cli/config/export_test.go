package config

import "time"

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(tokens []string, signingSecret, botToken string) *Slack {
	return &Slack{
		tokens:        tokens,
		signingSecret: signingSecret,
		botToken:      botToken,
		botName:       "slackbot",
	}
}

// NewDedupForTest creates a Dedup config for testing purposes
func NewDedupForTest(blackout time.Duration, policy string) *Dedup {
	return &Dedup{
		blackoutSeconds: int(blackout / time.Second),
		failurePolicy:   policy,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend string) *Repository {
	return &Repository{backend: backend}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewJiraForTest creates a Jira config for testing purposes
func NewJiraForTest(url string) *Jira {
	return &Jira{url: url, timeout: time.Second}
}
