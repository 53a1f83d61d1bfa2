// Package adaptive provides adaptive encryption for Synap.
//
// This package implements a cipher abstraction that selects an
// encryption algorithm by target architecture.
//
// Supported Algorithms:
//
//   - AES-GCM (16-, 24- or 32-byte key): chosen by New on amd64 and arm64
//   - ChaCha20-Poly1305 (32-byte key): chosen by New on other architectures
//
// Features:
//
//   - Architecture-based selection: New decides by GOARCH; CPU features
//     are not probed at run time
//   - AEAD: Authenticated encryption with associated data
//   - Thread Safety: All cipher operations are thread-safe
//
// Keys are used as given; no key derivation from passwords is performed.
//
// Usage:
//
//	cipher, err := adaptive.New(key)
//	encrypted, err := cipher.Encrypt(plaintext, aad)
//	plaintext, err := cipher.Decrypt(encrypted, aad)
//
// @adr AD-0201
package adaptive
