// Package entitlement contains the pure decision model that answers
// "may this user run this feature right now".
//
// Value objects:
//   - Tier: the discrete subscription level (free, trial, pro, premium)
//   - FeatureKey: the closed set of gated capabilities
//   - UsageStats: windowed usage counts derived from the activity log
//   - AccessRule: the static access rule attached to every FeatureKey
//
// Decisions:
//   - CanUseFeature / RemainingUsage / Evaluate: the evaluator
//   - Boundary / Guard: the consumption point exposing either the protected
//     capability or a LockedState with an upgrade trigger
//   - UsageDisplayFor / UsageDisplay: the free-tier usage meters
//
// Nothing in this package performs I/O. Inputs are resolved by the
// application layer and passed in as immutable values.
package entitlement
