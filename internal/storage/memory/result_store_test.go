package memory

import (
	"context"
	"errors"
	"testing"

	"clocklab/internal/domain"
	"clocklab/internal/storage"
)

func TestResultStore_InsertBulkAndGetByRunID(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()

	rows := []domain.MetricRow{
		{RunID: "run-a", Family: domain.FamilyTDEV, TauS: 1, ValueNs: 40, Defined: true},
		{RunID: "run-a", Family: domain.FamilyMTIE, TauS: 10, ValueNs: 900, Defined: true},
		{RunID: "run-a", Family: domain.FamilyMTIE, TauS: 1, ValueNs: 500, Defined: true},
		{RunID: "run-a", Family: domain.FamilyMTIE, TauS: 30, Defined: false},
	}
	if err := store.InsertBulk(ctx, rows); err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}

	got, err := store.GetByRunID(ctx, "run-a")
	if err != nil {
		t.Fatalf("GetByRunID: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	// Ordered by family, then tau: mtie 1, 10, 30, then tdev 1.
	if got[0].Family != domain.FamilyMTIE || got[0].TauS != 1 {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[3].Family != domain.FamilyTDEV {
		t.Errorf("got[3] = %+v", got[3])
	}
}

func TestResultStore_GetByFamilyRebuildsMetricResult(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()

	rows := []domain.MetricRow{
		{RunID: "run-a", Family: domain.FamilyMTIE, TauS: 1, ValueNs: 500, Defined: true},
		{RunID: "run-a", Family: domain.FamilyMTIE, TauS: 30, Defined: false},
		{RunID: "run-a", Family: domain.FamilyTDEV, TauS: 1, ValueNs: 40, Defined: true},
		{RunID: "run-b", Family: domain.FamilyMTIE, TauS: 1, ValueNs: 777, Defined: true},
	}
	if err := store.InsertBulk(ctx, rows); err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}

	mtie, err := store.GetByFamily(ctx, "run-a", domain.FamilyMTIE)
	if err != nil {
		t.Fatalf("GetByFamily: %v", err)
	}
	if len(mtie) != 2 {
		t.Fatalf("len = %d, want 2", len(mtie))
	}
	if v := mtie.At(1); !v.Defined || v.Ns != 500 {
		t.Errorf("mtie(1s) = %+v", v)
	}
	if mtie.At(30).Defined {
		t.Error("undefined row must stay undefined")
	}
	if mtie.At(10).Defined {
		t.Error("absent tau must read undefined")
	}
}

func TestResultStore_DuplicatesAndValidation(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()

	row := domain.MetricRow{RunID: "run-a", Family: domain.FamilyMTIE, TauS: 1, ValueNs: 1, Defined: true}
	if err := store.InsertBulk(ctx, []domain.MetricRow{row}); err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}
	if err := store.InsertBulk(ctx, []domain.MetricRow{row}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("err = %v, want ErrDuplicateKey", err)
	}
	if err := store.InsertBulk(ctx, []domain.MetricRow{{Family: domain.FamilyMTIE}}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("missing run_id: err = %v, want ErrInvalidInput", err)
	}
}
