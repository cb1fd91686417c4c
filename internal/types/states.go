package types

// RuleState represents the lifecycle state of a rule during a
// trigger-and-restore pass.
//
// A rule advances pending -> captured -> forced -> restored on the happy
// path. A failure at any transition moves it to failed, which is terminal.
type RuleState string

const (
	RulePending  RuleState = "pending"
	RuleCaptured RuleState = "captured"
	RuleForced   RuleState = "forced"
	RuleRestored RuleState = "restored"
	RuleFailed   RuleState = "failed"
)
