package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/repository"
)

var (
	ErrStageNameRequired = invalid("name is required")
	ErrStageNameTaken    = invalid("stage name already exists")
	ErrStageInvalidOrder = invalid("position must be >= 0")
)

type StageInput struct {
	Name     string
	Position int
}

type StageUpdate struct {
	Name     *string
	Position *int
}

type StageService struct {
	repo repository.StageRepository
}

func NewStageService(repo repository.StageRepository) *StageService {
	return &StageService{repo: repo}
}

func (s *StageService) List(ctx context.Context) (stages []domain.Stage, err error) {
	op := startOp(ctx, "stage", "list")
	defer func() { op.done(err) }()

	stages, err = s.repo.List(ctx)
	return stages, repoErr("list stages", err)
}

func (s *StageService) Create(ctx context.Context, in StageInput) (st *domain.Stage, err error) {
	op := startOp(ctx, "stage", "create")
	defer func() { op.done(err) }()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrStageNameRequired
	}
	if err := checkLen("name", name, 120); err != nil {
		return nil, err
	}
	if in.Position < 0 {
		return nil, ErrStageInvalidOrder
	}
	st = &domain.Stage{Name: name, Position: in.Position}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, stageWriteErr("create stage", err)
	}
	return st, nil
}

func (s *StageService) Update(ctx context.Context, id uint, in StageUpdate) (st *domain.Stage, err error) {
	op := startOp(ctx, "stage", "update")
	defer func() { op.done(err) }()

	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrStageNameRequired
		}
		if err := checkLen("name", name, 120); err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if in.Position != nil {
		if *in.Position < 0 {
			return nil, ErrStageInvalidOrder
		}
		updates["position"] = *in.Position
	}
	if len(updates) == 0 {
		return nil, ErrNoUpdates
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, stageWriteErr("update stage", err)
	}
	st, err = s.repo.FindByID(ctx, id)
	return st, repoErr("find stage", err)
}

func (s *StageService) Delete(ctx context.Context, id uint) (err error) {
	op := startOp(ctx, "stage", "delete")
	defer func() { op.done(err) }()

	return repoErr("delete stage", s.repo.DeleteByID(ctx, id))
}

func stageWriteErr(op string, err error) error {
	if errors.Is(err, repository.ErrStageNameTaken) {
		return ErrStageNameTaken
	}
	return repoErr(op, err)
}
