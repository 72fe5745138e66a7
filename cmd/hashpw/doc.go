// Command hashpw manages the HTTP basic auth password of the media converter.
//
// The server never stores a plaintext password. It reads a bcrypt hash from
// AUTH_PASSWORD_HASH and compares it on every request, so setting or
// changing the password means generating a new hash and restarting.
//
// Usage:
//
//	hashpw <command>
//
// Commands:
//
//	hash    Prompt for a password (twice on a terminal) and print an
//	        AUTH_PASSWORD_HASH line ready to paste into .env.
//
//	verify  Prompt for a password and report whether it matches the
//	        configured hash. Exits non-zero on mismatch.
//
//	status  Report whether a valid hash is configured.
//
// When stdin is not a terminal the password is read as a single line, so
// the tool can be scripted:
//
//	echo "$PASSWORD" | hashpw hash >> .env
package main
