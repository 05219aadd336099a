/*
Package vault implements the issuance surface of the ledger.

An issuer deposits funds on behalf of a user, minting them at the
ledger rate current at deposit time. The rate is read fresh on every
deposit, never cached, so two deposits in different blocks can carry
different locks. Users redeem their holdings through a withdraw,
which burns the settled balance and releases the matching reserve.

The reserve record keeps per user issuance accounting visible on
chain. It grows with deposits and shrinks with redemptions, clamped
at zero when accrued interest lets a user redeem more than was ever
deposited for them.
*/
package vault
