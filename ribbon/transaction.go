package ribbon

// Transaction is an RAII-equivalent guard over StartTransaction/Commit/
// Rollback, ensuring every transaction is resolved on every exit path.
// Callers defer Transaction.Close after checking their own success
// condition:
//
//	tx := r.Begin()
//	defer tx.Close()
//	... attempt a production ...
//	if ok {
//		tx.Accept()
//	}
//
// If Accept is never called before Close runs, Close rolls back.
type Transaction struct {
	r        *Ribbon
	resolved bool
	accept   bool
}

// Begin starts a transaction and returns a guard for it.
func (r *Ribbon) Begin() *Transaction {
	r.StartTransaction()
	return &Transaction{r: r}
}

// Accept marks the transaction as successful; the eventual Close will
// Commit rather than Rollback.
func (tx *Transaction) Accept() {
	tx.accept = true
}

// Close resolves the transaction: Commit if Accept was called, Rollback
// otherwise. Close is idempotent so it is safe to defer unconditionally.
func (tx *Transaction) Close() {
	if tx.resolved {
		return
	}
	tx.resolved = true
	if tx.accept {
		tx.r.Commit()
	} else {
		tx.r.Rollback()
	}
}
