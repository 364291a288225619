package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"fleetflow/internal/config"
	"fleetflow/internal/domain"
)

type stubAssessor struct {
	calls []string
	err   error
}

func (s *stubAssessor) Assess(ctx context.Context, mcNumber string) (*domain.RiskAssessment, error) {
	s.calls = append(s.calls, mcNumber)
	if s.err != nil {
		return nil, s.err
	}
	return &domain.RiskAssessment{
		MCNumber:    mcNumber,
		CompanyName: "Test Carrier LLC",
		RiskLevel:   domain.RiskLevelLow,
		Confidence:  0.9,
		Approved:    true,
	}, nil
}

func newTestFactory(assessor RiskAssessor) CommandFactory {
	return CommandFactory{
		LoadConfig: func() *config.Config { return &config.Config{} },
		NewRiskAssessor: func(*config.Config, *zap.Logger) RiskAssessor {
			return assessor
		},
	}
}

func run(t *testing.T, f CommandFactory, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := f.CreateRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestQuoteFreight_PrintsRankedTable(t *testing.T) {
	out, _, err := run(t, newTestFactory(nil),
		"quote", "freight",
		"--origin", "Chicago, IL",
		"--destination", "Dallas, TX",
		"--weight", "20000",
		"--distance", "1000",
		"--pickup", "2026-03-02",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, carrier := range []string{"Premium Express Logistics", "Reliable Transport Solutions", "Economy Freight Services"} {
		if !strings.Contains(out, carrier) {
			t.Errorf("expected %q in output:\n%s", carrier, out)
		}
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 quotes, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "*") {
		t.Errorf("expected first quote to be marked recommended, got %q", lines[1])
	}
}

func TestQuoteFreight_RequiresWeight(t *testing.T) {
	_, _, err := run(t, newTestFactory(nil),
		"quote", "freight", "--origin", "Chicago, IL", "--destination", "Dallas, TX",
	)
	if err == nil {
		t.Fatal("expected missing --weight to fail")
	}
}

func TestQuoteFreight_InvalidPickup(t *testing.T) {
	_, _, err := run(t, newTestFactory(nil),
		"quote", "freight", "--origin", "A", "--destination", "B", "--weight", "100", "--pickup", "tomorrow",
	)
	if err == nil || !strings.Contains(err.Error(), "--pickup") {
		t.Fatalf("expected pickup parse error, got %v", err)
	}
}

func TestQuoteWarehouse_ListsCatalog(t *testing.T) {
	out, _, err := run(t, newTestFactory(nil),
		"quote", "warehouse", "--pallets", "100", "--require", "Climate Control",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Climate Control $850") {
		t.Errorf("expected climate control add-on in output:\n%s", out)
	}
	if got := strings.Count(strings.TrimSpace(out), "\n"); got != 3 {
		t.Errorf("expected 3 warehouse rows, got %d:\n%s", got, out)
	}
	if strings.Contains(out, "Pacific Gateway") {
		t.Errorf("expected only the first three catalog warehouses:\n%s", out)
	}
}

func TestQuoteWarehouse_NoVolume(t *testing.T) {
	_, stderr, err := run(t, newTestFactory(nil), "quote", "warehouse")
	if err == nil {
		t.Fatal("expected error without pallets or sqft")
	}
	if !strings.Contains(stderr, "...") {
		t.Errorf("expected error printed to stderr, got %q", stderr)
	}
}

func TestCarrierRisk_EncodesAssessment(t *testing.T) {
	assessor := &stubAssessor{}
	out, _, err := run(t, newTestFactory(assessor), "carrier", "risk", "MC123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assessor.calls) != 1 || assessor.calls[0] != "MC123456" {
		t.Fatalf("unexpected assessor calls: %v", assessor.calls)
	}

	var got domain.RiskAssessment
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got.MCNumber != "MC123456" || got.RiskLevel != domain.RiskLevelLow || !got.Approved {
		t.Errorf("unexpected assessment: %+v", got)
	}
}

func TestCarrierRisk_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := run(t, newTestFactory(&stubAssessor{err: boom}), "carrier", "risk", "MC1")
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestCarrierRisk_RequiresArgument(t *testing.T) {
	if _, _, err := run(t, newTestFactory(&stubAssessor{}), "carrier", "risk"); err == nil {
		t.Fatal("expected missing MC number to fail")
	}
}
