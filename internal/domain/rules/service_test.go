package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linksoc/internal/core/apperror"
	"linksoc/internal/domain/rules"
	"linksoc/internal/infrastructure/storage/memory"
)

func newService(t *testing.T) *rules.Service {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Rules().Add(context.Background(),
		rules.Rule{Status: "Liberado", Flow: "Saída", Meaning: "ok", Color: "Verde"},
		rules.Rule{Status: "Bloqueado", Flow: "Entrada", Meaning: "hold", Color: "Vermelho"},
		rules.Rule{Status: "Aguardando", Flow: "Entrada", Meaning: "wait"},
	))
	svc, err := rules.NewService(store.Rules())
	require.NoError(t, err)
	return svc
}

func TestService_ListDefaultsColor(t *testing.T) {
	all, err := newService(t).List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, rules.DefaultColor, all[2].Color)
}

func TestService_ListFilter(t *testing.T) {
	svc := newService(t)

	tests := []struct {
		filter string
		want   []string
	}{
		{`flow == "Entrada"`, []string{"Bloqueado", "Aguardando"}},
		{`color == "Cinza"`, []string{"Aguardando"}},
		{`status.lowerAscii().startsWith("lib")`, []string{"Liberado"}},
		{`false`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got, err := svc.List(context.Background(), tt.filter)
			require.NoError(t, err)
			statuses := make([]string, 0, len(got))
			for _, r := range got {
				statuses = append(statuses, r.Status)
			}
			assert.Equal(t, tt.want, statuses)
		})
	}
}

func TestService_ListInvalidFilter(t *testing.T) {
	svc := newService(t)

	for _, f := range []string{`status ==`, `unknown == "x"`, `status`} {
		_, err := svc.List(context.Background(), f)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation), f)
	}
}
