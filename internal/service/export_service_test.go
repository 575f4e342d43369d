package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-portal-api/internal/dto"
	"github.com/noah-isme/course-portal-api/internal/models"
)

func TestExportServiceWritesModules(t *testing.T) {
	repo := newModuleRepoStub()
	modules := NewModuleService(repo, nil, nil, nil, nil)
	_, err := modules.Create(context.Background(), dto.CreateModuleRequest{ModuleID: "CS101", Name: "Intro", Year: "2025", Term: "Mich"})
	require.NoError(t, err)
	_, err = modules.Create(context.Background(), dto.CreateModuleRequest{ModuleID: "MA201", Name: "Calculus", Year: "2024", Term: "Lent"})
	require.NoError(t, err)

	var buf bytes.Buffer
	svc := NewExportService(repo, nil, nil)
	require.NoError(t, svc.WriteModulesCSV(context.Background(), &buf, models.ModuleFilter{Year: "2025"}))
	assert.Equal(t, "moduleId,name,year,term\nCS101,Intro,2025,Mich\n", buf.String())
}
