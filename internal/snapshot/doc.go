// Package snapshot runs the export pipeline: exchange a web identity token
// for temporary credentials, fetch a Consul snapshot, name it, and upload
// it to S3.
//
// Stages run strictly in order and every failure is terminal. Run returns
// a *Error whose Kind tells the caller which stage failed; no upload is
// attempted unless the exchange and the fetch both succeeded.
package snapshot
