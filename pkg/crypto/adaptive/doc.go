// Package adaptive seals small values with an AEAD cipher chosen for the
// host: AES-256-GCM where the CPU accelerates AES, ChaCha20-Poly1305
// elsewhere.
//
// Sealed output is nonce || ciphertext || tag, so a value sealed by one
// process can be opened by another holding the same key and cipher type.
//
//	c, err := adaptive.New(key)
//	sealed, err := c.Encrypt(token, []byte(storeKey))
//	token, err := c.Decrypt(sealed, []byte(storeKey))
package adaptive
