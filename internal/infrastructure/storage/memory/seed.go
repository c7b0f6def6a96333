package memory

import (
	"context"
	"fmt"

	"linksoc/internal/domain/auth"
	"linksoc/internal/domain/rules"
)

// DemoPassword is accepted in development mode.
const DemoPassword = "demo"

// SeedDemo loads the development dataset: the demo operator password and a
// starter rules table.
func SeedDemo(ctx context.Context, s *Store) error {
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	if err := s.Auth().AddPasswordHash(ctx, hash); err != nil {
		return err
	}

	return s.Rules().Add(ctx,
		rules.Rule{Status: "Aguardando", Flow: "Entrada", Meaning: "Gaiola aguardando conferência", Color: "Amarelo"},
		rules.Rule{Status: "Liberado", Flow: "Saída", Meaning: "Gaiola liberada para expedição", Color: "Verde"},
		rules.Rule{Status: "Bloqueado", Flow: "Entrada", Meaning: "Divergência de lacre", Color: "Vermelho"},
		rules.Rule{Status: "Descarte", Flow: "Reversa", Meaning: "Material para descarte"},
	)
}
