package planner

import (
	"reflect"
	"testing"

	contractx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/contract"
	flowx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/flow"
)

func TestPlanProductOnly(t *testing.T) {
	t.Parallel()

	// A context carrying only a SKU needs nothing beyond the product load:
	// there is no user to classify or contact.
	fc := flowx.New(flowx.WithSKU("SKU001"))
	got := Plan(fc)
	want := []contractx.TaskName{contractx.TaskFetchProduct}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Plan = %v, want %v", got, want)
	}
}

func TestPlanFullRun(t *testing.T) {
	t.Parallel()

	fc := flowx.New(
		flowx.WithUserID("u-1"),
		flowx.WithSKU("SKU001"),
		flowx.WithBehaviorSummary(contractx.BehaviorSummary{VisitCount: 2, MaxStaySeconds: 20, AvgStaySeconds: 15}),
	)
	got := Plan(fc)
	want := []contractx.TaskName{
		contractx.TaskFetchProduct,
		contractx.TaskClassifyIntent,
		contractx.TaskAntiDisturbCheck,
		contractx.TaskRetrieveContext,
		contractx.TaskGeneratePrimaryCopy,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Plan = %v, want %v", got, want)
	}
}

func TestPlanLowIntentSkipsRetrievalAndGeneration(t *testing.T) {
	t.Parallel()

	fc := flowx.New(
		flowx.WithUserID("u-1"),
		flowx.WithSKU("SKU001"),
		flowx.WithProduct(&contractx.Product{SKU: "SKU001"}),
		flowx.WithBehaviorSummary(contractx.BehaviorSummary{VisitCount: 1, MaxStaySeconds: 3, AvgStaySeconds: 3}),
	)
	fc.IntentLevel = contractx.IntentLow

	got := Plan(fc)
	want := []contractx.TaskName{contractx.TaskAntiDisturbCheck}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Plan = %v, want %v", got, want)
	}
}

func TestPlanForceGenerateOverridesLow(t *testing.T) {
	t.Parallel()

	fc := flowx.New(flowx.WithProduct(&contractx.Product{SKU: "SKU001"}))
	fc.IntentLevel = contractx.IntentLow
	fc.Signals.ForceGenerate = true

	got := Plan(fc)
	want := []contractx.TaskName{
		contractx.TaskAntiDisturbCheck,
		contractx.TaskGeneratePrimaryCopy,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Plan = %v, want %v", got, want)
	}
}

func TestPlanEstimatesLevelFromSummary(t *testing.T) {
	t.Parallel()

	// A bounce-level summary without classification should still suppress
	// retrieval and generation via the pre-classification estimate.
	fc := flowx.New(
		flowx.WithUserID("u-1"),
		flowx.WithSKU("SKU001"),
		flowx.WithProduct(&contractx.Product{SKU: "SKU001"}),
		flowx.WithBehaviorSummary(contractx.BehaviorSummary{VisitCount: 1, MaxStaySeconds: 3, AvgStaySeconds: 3}),
	)
	got := Plan(fc)
	want := []contractx.TaskName{
		contractx.TaskClassifyIntent,
		contractx.TaskAntiDisturbCheck,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Plan = %v, want %v", got, want)
	}
}

func TestPlanFollowupTaskType(t *testing.T) {
	t.Parallel()

	fc := flowx.New(flowx.WithProduct(&contractx.Product{SKU: "SKU001"}))
	fc.IntentLevel = contractx.IntentHesitating
	fc.Signals.TaskType = "followup"

	got := Plan(fc)
	want := []contractx.TaskName{
		contractx.TaskAntiDisturbCheck,
		contractx.TaskRetrieveContext,
		contractx.TaskGenerateFollowupCopy,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Plan = %v, want %v", got, want)
	}
}

func TestPlanBlockedGateSkipsGeneration(t *testing.T) {
	t.Parallel()

	fc := flowx.New(flowx.WithProduct(&contractx.Product{SKU: "SKU001"}))
	fc.IntentLevel = contractx.IntentHigh
	blocked := true
	fc.Signals.OutreachBlocked = &blocked

	got := Plan(fc)
	for _, task := range got {
		if task == contractx.TaskGeneratePrimaryCopy || task == contractx.TaskGenerateFollowupCopy {
			t.Fatalf("generation scheduled despite blocked gate: %v", got)
		}
	}
}

func TestPlanIdempotentOnFinishedContext(t *testing.T) {
	t.Parallel()

	fc := flowx.New(
		flowx.WithUserID("u-1"),
		flowx.WithSKU("SKU001"),
		flowx.WithProduct(&contractx.Product{SKU: "SKU001"}),
		flowx.WithBehaviorSummary(contractx.BehaviorSummary{VisitCount: 2}),
	)
	fc.IntentLevel = contractx.IntentLow
	blocked := true
	fc.Signals.OutreachBlocked = &blocked
	allowed := false
	fc.Signals.OutreachAllowed = &allowed

	got := Plan(fc)
	want := []contractx.TaskName{contractx.TaskAntiDisturbCheck}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Plan on finished context = %v, want only the gate re-check %v", got, want)
	}
}

func TestEnforcePrependsMandatoryChain(t *testing.T) {
	t.Parallel()

	// Identifiers only: the behavior fetch is needed, which pulls in the
	// classify and gate steps behind it.
	fc := flowx.New(flowx.WithUserID("u-1"), flowx.WithSKU("SKU001"))
	plan := []contractx.TaskName{contractx.TaskGeneratePrimaryCopy}

	got := Enforce(plan, fc)
	want := []contractx.TaskName{
		contractx.TaskFetchProduct,
		contractx.TaskFetchBehaviorSummary,
		contractx.TaskClassifyIntent,
		contractx.TaskAntiDisturbCheck,
		contractx.TaskGeneratePrimaryCopy,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Enforce = %v, want %v", got, want)
	}
}

func TestEnforceWithoutUserOnlyNeedsProduct(t *testing.T) {
	t.Parallel()

	fc := flowx.New(flowx.WithSKU("SKU001"))
	plan := []contractx.TaskName{
		contractx.TaskRetrieveContext,
		contractx.TaskGeneratePrimaryCopy,
	}

	got := Enforce(plan, fc)
	want := []contractx.TaskName{
		contractx.TaskFetchProduct,
		contractx.TaskRetrieveContext,
		contractx.TaskGeneratePrimaryCopy,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Enforce = %v, want %v", got, want)
	}
}

func TestEnforceDeduplicatesKeepingFirst(t *testing.T) {
	t.Parallel()

	fc := flowx.New(flowx.WithUserID("u-1"), flowx.WithSKU("SKU001"))
	plan := []contractx.TaskName{
		contractx.TaskClassifyIntent,
		contractx.TaskRetrieveContext,
		contractx.TaskFetchProduct,
		contractx.TaskRetrieveContext,
	}

	got := Enforce(plan, fc)
	want := []contractx.TaskName{
		contractx.TaskFetchProduct,
		contractx.TaskFetchBehaviorSummary,
		contractx.TaskClassifyIntent,
		contractx.TaskAntiDisturbCheck,
		contractx.TaskRetrieveContext,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Enforce = %v, want %v", got, want)
	}
}

func TestEnforceSatisfiedContextPassesPlanThrough(t *testing.T) {
	t.Parallel()

	fc := flowx.New(
		flowx.WithUserID("u-1"),
		flowx.WithSKU("SKU001"),
		flowx.WithProduct(&contractx.Product{SKU: "SKU001"}),
		flowx.WithBehaviorSummary(contractx.BehaviorSummary{VisitCount: 2}),
	)
	fc.IntentLevel = contractx.IntentHigh

	plan := []contractx.TaskName{contractx.TaskGeneratePrimaryCopy}
	got := Enforce(plan, fc)
	want := []contractx.TaskName{
		contractx.TaskAntiDisturbCheck,
		contractx.TaskGeneratePrimaryCopy,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Enforce = %v, want %v", got, want)
	}
}

func TestEnforceDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	fc := flowx.New(flowx.WithUserID("u-1"), flowx.WithSKU("SKU001"))
	plan := []contractx.TaskName{contractx.TaskGeneratePrimaryCopy}
	orig := append([]contractx.TaskName(nil), plan...)

	_ = Enforce(plan, fc)
	if !reflect.DeepEqual(plan, orig) {
		t.Fatalf("input plan mutated: %v", plan)
	}
}

func TestEnforceIdempotent(t *testing.T) {
	t.Parallel()

	fc := flowx.New(flowx.WithUserID("u-1"), flowx.WithSKU("SKU001"))
	once := Enforce([]contractx.TaskName{contractx.TaskGeneratePrimaryCopy}, fc)
	twice := Enforce(once, fc)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("Enforce not idempotent: %v vs %v", once, twice)
	}
}
