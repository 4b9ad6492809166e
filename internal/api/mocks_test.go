package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/logoforge-api/internal/domain"
	"github.com/phrazzld/logoforge-api/internal/promptgen"
	"github.com/phrazzld/logoforge-api/internal/service"
)

// MockOrchestratorService is a mock implementation of
// service.OrchestratorService for testing.
type MockOrchestratorService struct {
	CreateProjectAndStartPortfolioFn func(ctx context.Context, userID uuid.UUID, name string, brief domain.Brief) (*domain.Project, uuid.UUID, error)
	StartPortfolioFn                 func(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error)
	GetProjectFn                     func(ctx context.Context, projectID uuid.UUID) (*domain.Project, error)
}

func (m *MockOrchestratorService) CreateProjectAndStartPortfolio(
	ctx context.Context,
	userID uuid.UUID,
	name string,
	brief domain.Brief,
) (*domain.Project, uuid.UUID, error) {
	if m.CreateProjectAndStartPortfolioFn != nil {
		return m.CreateProjectAndStartPortfolioFn(ctx, userID, name, brief)
	}
	return nil, uuid.Nil, nil
}

func (m *MockOrchestratorService) StartPortfolio(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	if m.StartPortfolioFn != nil {
		return m.StartPortfolioFn(ctx, projectID)
	}
	return uuid.Nil, nil
}

func (m *MockOrchestratorService) GetProject(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	if m.GetProjectFn != nil {
		return m.GetProjectFn(ctx, projectID)
	}
	return nil, nil
}

// MockRefinementService is a mock implementation of
// service.RefinementService for testing.
type MockRefinementService struct {
	RefineUnitFn func(ctx context.Context, userID, sourceUnitID uuid.UUID, instruction string) (uuid.UUID, error)
}

func (m *MockRefinementService) RefineUnit(
	ctx context.Context,
	userID, sourceUnitID uuid.UUID,
	instruction string,
) (uuid.UUID, error) {
	if m.RefineUnitFn != nil {
		return m.RefineUnitFn(ctx, userID, sourceUnitID, instruction)
	}
	return uuid.Nil, nil
}

// MockBrandKitService is a mock implementation of service.BrandKitService
// for testing.
type MockBrandKitService struct {
	CreateKitFn func(ctx context.Context, userID, sourceUnitID uuid.UUID) (uuid.UUID, []promptgen.KitComponent, error)
}

func (m *MockBrandKitService) CreateKit(
	ctx context.Context,
	userID, sourceUnitID uuid.UUID,
) (uuid.UUID, []promptgen.KitComponent, error) {
	if m.CreateKitFn != nil {
		return m.CreateKitFn(ctx, userID, sourceUnitID)
	}
	return uuid.Nil, nil, nil
}

// MockProgressService is a mock implementation of service.ProgressService
// for testing.
type MockProgressService struct {
	GetProgressFn func(ctx context.Context, batchID uuid.UUID) (*service.Progress, error)
}

func (m *MockProgressService) GetProgress(ctx context.Context, batchID uuid.UUID) (*service.Progress, error) {
	if m.GetProgressFn != nil {
		return m.GetProgressFn(ctx, batchID)
	}
	return nil, nil
}

var (
	_ service.OrchestratorService = (*MockOrchestratorService)(nil)
	_ service.RefinementService   = (*MockRefinementService)(nil)
	_ service.BrandKitService     = (*MockBrandKitService)(nil)
	_ service.ProgressService     = (*MockProgressService)(nil)
)
