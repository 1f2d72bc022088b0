package commands

import (
	"fmt"
	"time"

	"github.com/wolfeidau/tenantd/internal/auth"
)

type TokenCmd struct {
	Subject string        `help:"subject (external id) to embed in the token" required:""`
	Secret  string        `help:"shared secret used to sign the token" env:"TENANTD_JWT_SECRET" required:""`
	TTL     time.Duration `help:"token lifetime" default:"24h"`
}

func (c *TokenCmd) Run(_ *Globals) error {
	token, err := auth.IssueToken(c.Secret, c.Subject, c.TTL)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	fmt.Println(token)
	return nil
}
