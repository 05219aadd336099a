/*
Package accrual implements an interest bearing balance ledger.

Every account holds a principal together with the accrual rate that
was locked in when the funds were minted. Balances grow linearly
with time at the locked rate. The ledger wide rate used for new
mints can only ever be lowered, existing accounts keep the rate
they locked.

All mutating operations settle the pending interest against the old
principal and timestamp before touching the account, so no interest
is ever lost or double counted.
*/
package accrual
