/*
Package crypto implements smoldb's end-to-end RSA-encrypted channel
negotiation (C2 in the design).

The server holds one RSA-2048 key pair for its process lifetime. A client
that wants an encrypted session fetches that public key in the clear
(SetupEncryption), generates its own RSA key pair, and sends its public key
back to the server in the clear (PubKey). From that point on, each side
encrypts payloads with the *other* party's public key:

	┌────────────┐   SetupEncryption   ┌────────────┐
	│   Client   │ ──────────────────▶ │   Server   │
	│            │ ◀────────────────── │            │   server pub key (plaintext)
	│            │     PubKey(K_c)     │            │
	│            │ ──────────────────▶ │            │   client pub key (plaintext)
	│            │ ◀────────────────── │            │   Encrypt(reply, K_c)
	│            │   Encrypted(ct)     │            │   Decrypt(ct) with server priv
	└────────────┘                     └────────────┘

One RSA-2048 block (PKCS#1 v1.5 padding) per message — no chunking, so a
single frame's plaintext must fit within the modulus size minus padding
overhead (KeyPair.MaxPlaintextSize). There is no
freshness or replay protection beyond what PKCS#1 v1.5 affords; this package
does not add any. A server restart invalidates every negotiated session
since keys are not persisted across restarts unless --persist-keys is set
(see cmd/smoldb-server).
*/
package crypto
