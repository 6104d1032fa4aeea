package engine

import (
	"math"
	"reflect"
	"testing"

	"rinkbook/internal/core"
)

func expense(cat core.ExpenseCategory, cents int64, date core.Date, method core.PaymentMethod) core.ExpenseRecord {
	return core.ExpenseRecord{
		PlayerID:      "p1",
		Category:      cat,
		Description:   string(cat),
		Amount:        core.Money{Cents: cents},
		Date:          date,
		PaidBy:        core.PaidByParent,
		PaymentMethod: method,
		Season:        "2024-2025",
	}
}

func TestExpenseSummaryEmpty(t *testing.T) {
	s := ComputeExpenseSummary("2024-2025", nil, nil)
	if s.TotalExpenses.Cents != 0 || s.ExpensesPerGame.Cents != 0 || s.ProjectedYearTotal.Cents != 0 {
		t.Fatalf("expected zero totals, got %+v", s)
	}
	if s.CategoryTotals == nil || s.MonthlyTotals == nil || s.PaymentMethodTotals == nil {
		t.Fatalf("expected empty non-nil maps")
	}
	if len(s.CategoryTotals)+len(s.MonthlyTotals)+len(s.PaymentMethodTotals) != 0 {
		t.Fatalf("expected empty maps, got %+v", s)
	}
}

func TestExpenseSummaryCategorySplit(t *testing.T) {
	expenses := []core.ExpenseRecord{
		expense(core.Equipment, 30000, core.NewDate(2024, 9, 5), core.CreditCard),
		expense(core.Equipment, 20000, core.NewDate(2024, 10, 12), core.Debit),
		expense(core.Travel, 30000, core.NewDate(2024, 10, 20), core.CreditCard),
	}
	s := ComputeExpenseSummary("2024-2025", expenses, nil)

	if s.TotalExpenses.Cents != 80000 {
		t.Fatalf("expected 800.00 total, got %s", s.TotalExpenses)
	}
	want := map[core.ExpenseCategory]core.CategoryTotal{
		core.Equipment: {Total: core.Money{Cents: 50000}, Count: 2, Percentage: 62.5},
		core.Travel:    {Total: core.Money{Cents: 30000}, Count: 1, Percentage: 37.5},
	}
	if !reflect.DeepEqual(s.CategoryTotals, want) {
		t.Fatalf("unexpected category totals %+v", s.CategoryTotals)
	}

	var catSum int64
	var pctSum float64
	for _, ct := range s.CategoryTotals {
		catSum += ct.Total.Cents
		pctSum += ct.Percentage
	}
	if catSum != s.TotalExpenses.Cents {
		t.Fatalf("category totals %d != total %d", catSum, s.TotalExpenses.Cents)
	}
	if math.Abs(pctSum-100) > 1e-9 {
		t.Fatalf("percentages sum to %v", pctSum)
	}

	if s.MonthlyTotals["2024-09"].Cents != 30000 || s.MonthlyTotals["2024-10"].Cents != 50000 {
		t.Fatalf("unexpected monthly totals %+v", s.MonthlyTotals)
	}
	if s.PaymentMethodTotals[core.CreditCard].Cents != 60000 || s.PaymentMethodTotals[core.Debit].Cents != 20000 {
		t.Fatalf("unexpected payment totals %+v", s.PaymentMethodTotals)
	}
	if s.ExpensesPerMonth.Cents != 40000 || s.ProjectedYearTotal.Cents != 480000 {
		t.Fatalf("unexpected per-month %s / projected %s", s.ExpensesPerMonth, s.ProjectedYearTotal)
	}
	if s.ExpensesPerGame.Cents != 0 {
		t.Fatalf("expected 0 per game without games, got %s", s.ExpensesPerGame)
	}
}

func TestExpenseSummaryReimbursements(t *testing.T) {
	stale := expense(core.Registration, 50000, core.NewDate(2024, 9, 1), core.ETransfer)
	stale.ReimbursedAmount = core.Money{Cents: 20000}

	s := ComputeExpenseSummary("2024-2025", []core.ExpenseRecord{stale}, nil)
	if s.TotalReimbursed.Cents != 0 {
		t.Fatalf("stale reimbursed amount counted: %s", s.TotalReimbursed)
	}
	if s.NetExpenses != s.TotalExpenses {
		t.Fatalf("expected net == total, got %s vs %s", s.NetExpenses, s.TotalExpenses)
	}

	paid := stale
	paid.IsReimbursed = true
	paid.IsTaxDeductible = true
	s = ComputeExpenseSummary("2024-2025", []core.ExpenseRecord{paid}, nil)
	if s.TotalReimbursed.Cents != 20000 || s.NetExpenses.Cents != 30000 {
		t.Fatalf("unexpected reimbursed %s net %s", s.TotalReimbursed, s.NetExpenses)
	}
	if s.TotalTaxDeductible.Cents != 50000 {
		t.Fatalf("tax deductible must use the full amount, got %s", s.TotalTaxDeductible)
	}
}

func TestExpenseSummaryPerGame(t *testing.T) {
	expenses := []core.ExpenseRecord{
		expense(core.IceTime, 10000, core.NewDate(2024, 10, 1), core.Cash),
	}
	other := game("x1", core.NewDate(2024, 10, 2), 0, 0, 0, core.Loss)
	other.PlayerID = "p2"
	games := []core.GameRecord{
		game("g1", core.NewDate(2024, 10, 2), 0, 0, 0, core.Loss),
		game("g2", core.NewDate(2024, 10, 9), 0, 0, 0, core.Loss),
		game("g3", core.NewDate(2024, 10, 16), 0, 0, 0, core.Loss),
		game("g0", core.NewDate(2023, 10, 16), 0, 0, 0, core.Loss), // previous season
		other,
	}
	s := ComputeExpenseSummary("2024-2025", expenses, games)
	if s.ExpensesPerGame.Cents != 3333 {
		t.Fatalf("expected 33.33 per game, got %s", s.ExpensesPerGame)
	}
	if s.PlayerID != "p1" {
		t.Fatalf("expected player p1, got %q", s.PlayerID)
	}
}

func TestExpenseSummaryAllZeroAmounts(t *testing.T) {
	free := expense(core.Training, 0, core.NewDate(2024, 11, 1), core.Cash)
	s := ComputeExpenseSummary("2024-2025", []core.ExpenseRecord{free}, nil)
	ct := s.CategoryTotals[core.Training]
	if ct.Count != 1 || ct.Percentage != 0 {
		t.Fatalf("expected count 1 and 0%% with zero total, got %+v", ct)
	}
	if math.IsNaN(ct.Percentage) {
		t.Fatalf("percentage is NaN")
	}
}

func TestExpenseSummaryProjection(t *testing.T) {
	tests := []struct {
		name          string
		amounts       []int64
		months        []core.Date
		wantPerMonth  int64
		wantProjected int64
	}{
		{
			name:          "even split",
			amounts:       []int64{30000, 50000},
			months:        []core.Date{core.NewDate(2024, 9, 5), core.NewDate(2024, 10, 5)},
			wantPerMonth:  40000,
			wantProjected: 480000,
		},
		{
			name:          "projection uses the unrounded monthly figure",
			amounts:       []int64{5000, 2500, 2500},
			months:        []core.Date{core.NewDate(2024, 9, 5), core.NewDate(2024, 10, 5), core.NewDate(2024, 11, 5)},
			wantPerMonth:  3333,
			wantProjected: 40000,
		},
		{
			name:          "single month",
			amounts:       []int64{1001},
			months:        []core.Date{core.NewDate(2024, 12, 1)},
			wantPerMonth:  1001,
			wantProjected: 12012,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var expenses []core.ExpenseRecord
			for i, cents := range tt.amounts {
				expenses = append(expenses, expense(core.IceTime, cents, tt.months[i], core.Cash))
			}
			s := ComputeExpenseSummary("2024-2025", expenses, nil)
			if s.ExpensesPerMonth.Cents != tt.wantPerMonth || s.ProjectedYearTotal.Cents != tt.wantProjected {
				t.Errorf("per month %d projected %d, want %d and %d",
					s.ExpensesPerMonth.Cents, s.ProjectedYearTotal.Cents, tt.wantPerMonth, tt.wantProjected)
			}
		})
	}
}
