package bridge

// checkSession is the bounds policy applied before every per-session access.
// The session number is compared against the live counter, not against the
// set of occupied slots, so a number can pass while its slot is still free.
func (t *Table) checkSession(n int) error {
	if n > t.capacity || n > t.sessionCount || n < 1 {
		return ErrOutOfBounds
	}
	return nil
}

// lookup validates n and returns its record. Callers must hold the lock.
func (t *Table) lookup(n int) (*record, error) {
	if err := t.checkSession(n); err != nil {
		return nil, err
	}
	return &t.records[n-1], nil
}

func checkLeg(leg int) error {
	if leg < 1 || leg > LegCount {
		return ErrInvalidLeg
	}
	return nil
}

func checkPair(pair int) error {
	if pair < 0 || pair > LegCount {
		return ErrInvalidPair
	}
	return nil
}
