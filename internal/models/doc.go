// Package models defines the core domain models for taghiane.
//
// A bill moves through three shapes:
//   - Receipt: the editable draft produced by the scan step and refined by the
//     item, participant and assignment steps. It is also the receipt_data blob
//     stored with a saved bill, so its JSON names follow the client.
//   - ParticipantSummary: the per-participant result of the allocation engine.
//   - SplitBill: the durable record (receipt + summaries) owned by one user and
//     shareable by ID.
//
// Participants are identified by opaque string IDs. The current user's ID is the
// subject of their access token; everyone else gets a generated UUID.
package models
