package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("database.driver must be postgres or memory (got %q)", c.Database.Driver)
	}

	if err := c.Mail.validate(); err != nil {
		return fmt.Errorf("mail: %w", err)
	}

	if err := c.Notifications.validate(); err != nil {
		return fmt.Errorf("notifications: %w", err)
	}

	if c.Archive.Enabled() {
		if c.Archive.AccessKey == "" || c.Archive.SecretKey == "" {
			return fmt.Errorf("archive: access_key and secret_key are required when endpoint is set")
		}
		if len(c.Security.LinkSecret) < 32 {
			return fmt.Errorf("security.link_secret must be at least 32 characters when archive is enabled (got %d)", len(c.Security.LinkSecret))
		}
	}

	if c.RateLimit.FormsPerMinute <= 0 {
		return fmt.Errorf("rate_limit.forms_per_minute must be > 0 (got %d)", c.RateLimit.FormsPerMinute)
	}

	return nil
}

func (m *MailConfig) validate() error {
	if !m.Enabled {
		return nil
	}
	if m.ServerToken == "" {
		return fmt.Errorf("server_token is required when mail is enabled")
	}
	if !strings.Contains(m.From, "@") {
		return fmt.Errorf("from must be an email address (got %q)", m.From)
	}
	if !strings.Contains(m.AdminEmail, "@") {
		return fmt.Errorf("admin_email must be an email address (got %q)", m.AdminEmail)
	}
	return nil
}

func (n *NotificationsConfig) validate() error {
	if n.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", n.Workers)
	}
	if n.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be > 0 (got %d)", n.QueueSize)
	}
	if n.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be > 0 (got %d)", n.MaxAttempts)
	}
	return nil
}
