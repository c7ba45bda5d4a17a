package shell

// ResolveCharacteristic returns token when it is non-empty, otherwise the
// session's default characteristic. It fails with MissingCharacteristic when
// neither is available and never mutates the session.
func ResolveCharacteristic(sess *Session, token string) (string, error) {
	if token != "" {
		return token, nil
	}
	if sess.defaultChar != "" {
		return sess.defaultChar, nil
	}
	return "", ErrMissingCharacteristic
}

// SetDefaultCharacteristic overwrites the default characteristic.
func SetDefaultCharacteristic(sess *Session, uuid string) {
	sess.defaultChar = uuid
}

// ClearDefaultCharacteristic resets the default characteristic to absent.
func ClearDefaultCharacteristic(sess *Session) {
	sess.defaultChar = ""
}
