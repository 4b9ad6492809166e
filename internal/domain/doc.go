// Package domain contains the core business entities of the generation
// system: projects and their creative briefs, generation units with their
// status lifecycle, and credit reservations. Entities validate themselves
// and carry no infrastructure or delivery concerns.
package domain
