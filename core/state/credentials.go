package state

// Credentials are non-transferable unit balances keyed by a 32-byte scope
// (the marketplace id for access grants, the product id for delivery
// receipts) and the holder address. Non-transferability is a property of
// this layer: no transfer operation exists for credential entries, only
// credit by the issuing module.

func credentialKey(scope [32]byte, addr []byte) []byte {
	return prefixedKey(credentialPrefix, scope[:], separatorComponent, addr)
}

// CredentialBalance returns the number of credential units the holder owns
// within the scope.
func (m *Manager) CredentialBalance(scope [32]byte, addr [20]byte) (uint64, error) {
	var count uint64
	if _, err := m.getRecord(credentialKey(scope, addr[:]), &count); err != nil {
		return 0, err
	}
	return count, nil
}

// CreditCredential adds units to the holder's credential balance within the
// scope.
func (m *Manager) CreditCredential(scope [32]byte, addr [20]byte, units uint64) error {
	current, err := m.CredentialBalance(scope, addr)
	if err != nil {
		return err
	}
	return m.putRecord(credentialKey(scope, addr[:]), current+units)
}
