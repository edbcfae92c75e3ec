package service

import (
	"context"
	"fmt"
	"os"

	"washdesk_backend/internal/catalog/transport"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// templateSeed is the YAML shape of a reminder template seed file.
type templateSeed struct {
	Templates []struct {
		Name  string `yaml:"name"`
		Items []struct {
			MonthsAfter int    `yaml:"months_after"`
			IsPaid      bool   `yaml:"is_paid"`
			ServiceType string `yaml:"service_type"`
		} `yaml:"items"`
	} `yaml:"templates"`
}

// LoadTemplateSeed reads a YAML seed file and creates the reminder templates
// it describes for the given tenant. Templates whose name already exists are
// skipped. Returns the number of templates created.
func (s *Service) LoadTemplateSeed(ctx context.Context, tenantID uuid.UUID, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read template seed: %w", err)
	}

	var seed templateSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parse template seed: %w", err)
	}

	existing, err := s.repo.ListTemplates(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	existingNames := make(map[string]bool, len(existing))
	for _, tpl := range existing {
		existingNames[tpl.Name] = true
	}

	created := 0
	for _, tpl := range seed.Templates {
		if existingNames[tpl.Name] {
			continue
		}

		items := make([]transport.TemplateItemRequest, len(tpl.Items))
		for i, it := range tpl.Items {
			items[i] = transport.TemplateItemRequest{
				MonthsAfter: it.MonthsAfter,
				IsPaid:      it.IsPaid,
				ServiceType: it.ServiceType,
			}
		}

		if _, err := s.CreateTemplate(ctx, tenantID, transport.CreateTemplateRequest{
			Name:  tpl.Name,
			Items: items,
		}); err != nil {
			return created, fmt.Errorf("seed template %q: %w", tpl.Name, err)
		}
		created++
	}

	return created, nil
}
