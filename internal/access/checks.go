package access

import "idbridge/internal/schema"

// Operation is a capability on an object or field.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationRead   Operation = "read"
	OperationUpdate Operation = "update"
)

// Check describes the minimum capability an operation needs: the object
// itself plus every listed field, all under the same operation.
type Check struct {
	Name      string
	Object    string
	Operation Operation
	Fields    []string
}

// Publisher-side checks: creating change events.
var (
	LogEventCreate = Check{
		Name:      "log event creation",
		Object:    schema.ObjectLogEvent,
		Operation: OperationCreate,
		Fields:    []string{schema.FieldProviderName, schema.FieldPrincipalID, schema.FieldLogID, schema.FieldMessage},
	}
	LoginHistoryEventCreate = Check{
		Name:      "login history event creation",
		Object:    schema.ObjectLoginHistoryEvent,
		Operation: OperationCreate,
		Fields: []string{
			schema.FieldProviderName, schema.FieldPrincipalID, schema.FieldFlowType, schema.FieldLoggedAt,
			schema.FieldSuccess, schema.FieldProviderType, schema.FieldInfo,
		},
	}
	MappingTouchEventCreate = Check{
		Name:      "mapping touch event creation",
		Object:    schema.ObjectMappingTouchEvent,
		Operation: OperationCreate,
		Fields:    []string{schema.FieldProviderName, schema.FieldPrincipalID},
	}
)

// Consumer-side checks: applying change events to persisted records.
var (
	LogEntryCreate = Check{
		Name:      "log entry creation",
		Object:    schema.ObjectMappingLog,
		Operation: OperationCreate,
		Fields:    []string{schema.FieldProviderName, schema.FieldPrincipalID, schema.FieldLogID, schema.FieldMessage},
	}
	LoginHistoryEntryCreate = Check{
		Name:      "login history entry creation",
		Object:    schema.ObjectLoginHistory,
		Operation: OperationCreate,
		Fields: []string{
			schema.FieldProviderName, schema.FieldPrincipalID, schema.FieldFlowType, schema.FieldLoggedAt,
			schema.FieldSuccess, schema.FieldProviderType, schema.FieldInfo,
		},
	}
	MappingLogReferenceUpdate = Check{
		Name:      "mapping log reference update",
		Object:    schema.ObjectUserMapping,
		Operation: OperationUpdate,
		Fields:    []string{schema.FieldLastLogReference},
	}
	MappingUpdate = Check{
		Name:      "mapping login details update",
		Object:    schema.ObjectUserMapping,
		Operation: OperationUpdate,
		Fields:    []string{schema.FieldLastLoginAt, schema.FieldLoginCount},
	}
)

// MappingRead guards the mapping cache lookup (field-level read security).
var MappingRead = Check{
	Name:      "mapping lookup",
	Object:    schema.ObjectUserMapping,
	Operation: OperationRead,
	Fields: []string{
		schema.FieldProviderName, schema.FieldPrincipalID, schema.FieldTargetIdentifier,
		schema.FieldLastLogReference, schema.FieldLastLoginAt, schema.FieldLoginCount,
	},
}

// MappingSave guards operator-driven mapping creation and edits.
var MappingSave = Check{
	Name:      "mapping save",
	Object:    schema.ObjectUserMapping,
	Operation: OperationCreate,
	Fields: []string{
		schema.FieldProviderName, schema.FieldPrincipalID, schema.FieldTargetIdentifier, schema.FieldUniqueKey,
	},
}
