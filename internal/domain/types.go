package domain

import "github.com/google/uuid"

type UserID = uuid.UUID
type EmployeeID = uuid.UUID
type AuditID = uuid.UUID
