/*
Package bridge implements cross ledger transfers.

A transfer happens in two phases. The outbound side burns the funds
on the local ledger and emits a transfer envelope carrying the
amount and the sender's locked accrual rate. The inbound side of the
counterpart ledger verifies the envelope origin and mints exactly
the carried amount with the carried rate, so value and rate survive
the crossing.

Envelope delivery is the job of a Transport. The coordinator itself
keeps no idempotency state, replay protection is delegated to the
transport layer.
*/
package bridge
