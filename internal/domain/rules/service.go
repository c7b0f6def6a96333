// Package rules serves the flow-status business rules table.
package rules

import (
	"context"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"

	"linksoc/internal/core/apperror"
)

// DefaultColor is used for rules without a color.
const DefaultColor = "Cinza"

// Rule maps a flow status to its meaning and display color.
type Rule struct {
	Status  string `db:"status" json:"Status"`
	Flow    string `db:"flow" json:"Fluxo"`
	Meaning string `db:"meaning" json:"Significado"`
	Color   string `db:"color" json:"Cor"`
}

// Repository defines read access to rules.
type Repository interface {
	List(ctx context.Context) ([]Rule, error)
}

// Service provides rule queries.
type Service struct {
	repo Repository
	env  *cel.Env
}

// NewService creates a new rule service.
func NewService(repo Repository) (*Service, error) {
	env, err := cel.NewEnv(
		cel.Variable("status", cel.StringType),
		cel.Variable("flow", cel.StringType),
		cel.Variable("meaning", cel.StringType),
		cel.Variable("color", cel.StringType),
		ext.Strings(),
	)
	if err != nil {
		return nil, err
	}
	return &Service{repo: repo, env: env}, nil
}

// List returns all rules, keeping those for which filter evaluates to true.
// filter is a CEL expression over status, flow, meaning and color,
// e.g. `color == "Verde" && status.startsWith("A")`. Empty filter keeps everything.
func (s *Service) List(ctx context.Context, filter string) ([]Rule, error) {
	var prg cel.Program
	if filter = strings.TrimSpace(filter); filter != "" {
		var err error
		if prg, err = s.compile(filter); err != nil {
			return nil, err
		}
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.NewDatabase("rules", err)
	}

	out := make([]Rule, 0, len(all))
	for _, r := range all {
		if strings.TrimSpace(r.Color) == "" {
			r.Color = DefaultColor
		}
		if prg != nil {
			keep, err := eval(prg, r)
			if err != nil {
				return nil, apperror.NewValidation("filter evaluation failed").
					WithDetail("filter", filter).
					WithCause(err)
			}
			if !keep {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Service) compile(filter string) (cel.Program, error) {
	ast, iss := s.env.Compile(filter)
	if iss != nil && iss.Err() != nil {
		return nil, apperror.NewValidation("invalid filter").
			WithDetail("filter", filter).
			WithDetail("reason", iss.Err().Error())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, apperror.NewValidation("filter must be a boolean expression").
			WithDetail("filter", filter)
	}

	prg, err := s.env.Program(ast)
	if err != nil {
		return nil, apperror.NewValidation("invalid filter").
			WithDetail("filter", filter).
			WithDetail("reason", err.Error())
	}
	return prg, nil
}

func eval(prg cel.Program, r Rule) (bool, error) {
	out, _, err := prg.Eval(map[string]any{
		"status":  r.Status,
		"flow":    r.Flow,
		"meaning": r.Meaning,
		"color":   r.Color,
	})
	if err != nil {
		return false, err
	}
	b, _ := out.Value().(bool)
	return b, nil
}
