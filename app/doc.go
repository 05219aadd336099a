/*
Package app assembles a runnable ledger out of the building blocks:
a commit store for state, a router dispatching messages to the
extension handlers, and a decorator chain for the cross cutting
concerns.

The application processes one block at a time. Transactions are
delivered into a savepoint over the block working set, so a failing
transaction never leaves partial writes behind. Commit persists the
block as the next store version.
*/
package app
