// Package services defines the shared error taxonomy for components that call
// external tools or remote services. Sentinel markers let callers classify
// failures with errors.Is without inspecting message text.
package services
