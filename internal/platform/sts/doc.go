// Package sts exchanges a workload identity token for temporary AWS
// credentials using AssumeRoleWithWebIdentity.
//
// The call is unsigned, so the client is built with anonymous credentials.
// Issued credentials are returned to the caller and never cached.
package sts
