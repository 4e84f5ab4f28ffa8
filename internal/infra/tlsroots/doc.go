// Package tlsroots builds the TLS settings cricket-cli uses to reach an
// HTTPS backend.
//
// A Pool starts from the system roots and can be extended with a private
// CA bundle (a file or a directory of .pem/.crt/.cer files). ClientConfig
// describes the tls section of the CLI configuration and turns it into an
// *http.Client.
package tlsroots
