package core

const (
	RegularSeason GameType = "Regular Season"
	Playoff       GameType = "Playoff"
	Tournament    GameType = "Tournament"
	Exhibition    GameType = "Exhibition"
	Practice      GameType = "Practice"
)

const (
	Home Location = "Home"
	Away Location = "Away"
)

const (
	Win          GameResult = "Win"
	Loss         GameResult = "Loss"
	Tie          GameResult = "Tie"
	OvertimeWin  GameResult = "Overtime Win"
	OvertimeLoss GameResult = "Overtime Loss"
	ShootoutWin  GameResult = "Shootout Win"
	ShootoutLoss GameResult = "Shootout Loss"
)

const (
	Registration ExpenseCategory = "Registration"
	Equipment    ExpenseCategory = "Equipment"
	Travel       ExpenseCategory = "Travel"
	Tournaments  ExpenseCategory = "Tournaments"
	Training     ExpenseCategory = "Training"
	IceTime      ExpenseCategory = "Ice Time"
	TeamFees     ExpenseCategory = "Team Fees"
	FoodLodging  ExpenseCategory = "Food & Lodging"
	GasMileage   ExpenseCategory = "Gas & Mileage"
	OtherExpense ExpenseCategory = "Other"
)

const (
	PaidByPlayer  Payer = "Player"
	PaidByParent  Payer = "Parent"
	PaidByFamily  Payer = "Family"
	PaidBySponsor Payer = "Sponsor"
	PaidByTeam    Payer = "Team"
	PaidByOther   Payer = "Other"
)

const (
	Cash        PaymentMethod = "Cash"
	CreditCard  PaymentMethod = "Credit Card"
	Debit       PaymentMethod = "Debit"
	Check       PaymentMethod = "Check"
	ETransfer   PaymentMethod = "E-Transfer"
	PayPal      PaymentMethod = "PayPal"
	OtherMethod PaymentMethod = "Other"
)

const (
	Weekly    Frequency = "Weekly"
	Monthly   Frequency = "Monthly"
	Quarterly Frequency = "Quarterly"
	Yearly    Frequency = "Yearly"
)

const (
	GoalMilestone        MilestoneType = "Goal"
	AssistMilestone      MilestoneType = "Assist"
	PointMilestone       MilestoneType = "Point"
	GameMilestone        MilestoneType = "Game"
	AchievementMilestone MilestoneType = "Achievement"
)

const (
	Forward Position = "Forward"
	Defense Position = "Defense"
	Goalie  Position = "Goalie"
)

type (
	GameType        string
	Location        string
	GameResult      string
	ExpenseCategory string
	Payer           string
	PaymentMethod   string
	Frequency       string
	MilestoneType   string
	Position        string
)

// ExpenseCategories lists the closed set of categories in display order.
var ExpenseCategories = []ExpenseCategory{
	Registration, Equipment, Travel, Tournaments, Training,
	IceTime, TeamFees, FoodLodging, GasMileage, OtherExpense,
}

func (t GameType) IsValid() bool {
	switch t {
	case RegularSeason, Playoff, Tournament, Exhibition, Practice:
		return true
	}
	return false
}

func (l Location) IsValid() bool {
	return l == Home || l == Away
}

func (r GameResult) IsValid() bool {
	switch r {
	case Win, Loss, Tie, OvertimeWin, OvertimeLoss, ShootoutWin, ShootoutLoss:
		return true
	}
	return false
}

// IsWin reports whether the result counts toward the wins column.
func (r GameResult) IsWin() bool {
	return r == Win || r == OvertimeWin || r == ShootoutWin
}

// IsLoss reports whether the result counts toward the losses column.
func (r GameResult) IsLoss() bool {
	return r == Loss || r == OvertimeLoss || r == ShootoutLoss
}

// DeriveResult maps a final score to Win, Loss or Tie. Overtime and shootout
// variants cannot be told apart from the score and must be given explicitly.
func DeriveResult(teamScore, opponentScore int) GameResult {
	switch {
	case teamScore > opponentScore:
		return Win
	case teamScore < opponentScore:
		return Loss
	default:
		return Tie
	}
}

// ResultMatchesScore reports whether an explicit result agrees with the score.
func ResultMatchesScore(r GameResult, teamScore, opponentScore int) bool {
	switch {
	case r.IsWin():
		return teamScore > opponentScore
	case r.IsLoss():
		return teamScore < opponentScore
	case r == Tie:
		return teamScore == opponentScore
	}
	return false
}

func (c ExpenseCategory) IsValid() bool {
	for _, v := range ExpenseCategories {
		if c == v {
			return true
		}
	}
	return false
}

func (p Payer) IsValid() bool {
	switch p {
	case PaidByPlayer, PaidByParent, PaidByFamily, PaidBySponsor, PaidByTeam, PaidByOther:
		return true
	}
	return false
}

func (m PaymentMethod) IsValid() bool {
	switch m {
	case Cash, CreditCard, Debit, Check, ETransfer, PayPal, OtherMethod:
		return true
	}
	return false
}

func (f Frequency) IsValid() bool {
	switch f {
	case Weekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

func (t MilestoneType) IsValid() bool {
	switch t {
	case GoalMilestone, AssistMilestone, PointMilestone, GameMilestone, AchievementMilestone:
		return true
	}
	return false
}

func (p Position) IsValid() bool {
	return p == Forward || p == Defense || p == Goalie
}
