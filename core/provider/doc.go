// Package provider normalizes the connection parameters of OpenAI-compatible
// chat backends into one immutable [Config] and turns it into a
// [client.Client].
//
// Backends come in three variants. [NewHosted] is for authenticated APIs and
// rejects a missing credential at construction. [NewLocal] is for no-auth
// servers such as Ollama. [FromCustom] accepts any endpoint and infers the
// auth policy from the credential. [Preset] wires the well-known backends to
// their <BACKEND>_API_KEY / <BACKEND>_MODEL / <BACKEND>_BASE_URL variables.
//
// Every constructor validates eagerly and returns a [*ConfigurationError];
// nothing is deferred to the first request. [Config.NewClient] performs no
// network I/O.
package provider
