// Package subscription models the billing system of record as seen by the
// entitlement engine: the user to billing-customer mapping, the customer's
// subscription record, the plan catalogue, and the immutable Snapshot that
// resolves to an entitlement tier.
package subscription
