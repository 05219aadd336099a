/*
Package tidemark defines the common types and interfaces that tie the
tidemark ledger packages together.

Tidemark maintains per-user, interest-bearing balances whose accrual rate
is locked individually at mint time, and moves value between independent
ledger instances ("chains") while preserving that locked rate. Each chain
runs one accrual ledger (x/accrual) and one transfer coordinator
(x/bridge); chains share no state and agree only through signed transfer
envelopes carried by a transport.

The root package holds the pieces every extension needs: the KVStore
interfaces, Address and Condition, the Rate fraction, UnixTime, the
Msg/Tx/Handler plumbing and the context helpers. Extensions live under x/
and follow the same layout: codec, model, controller or handler, and a
genesis initializer.
*/
package tidemark
