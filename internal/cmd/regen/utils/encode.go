package utils

import (
	"encoding/json"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// Encode renders resource as json or yaml with zero-valued fields
// stripped out. Map keys come out sorted in both formats.
func Encode(outputType string, resource interface{}) (string, error) {

	switch outputType {
	case "json":
		initialMap := make(map[string]interface{})
		jsonData, err := json.MarshalIndent(resource, "", "  ")
		if err != nil {
			return "", err
		}

		if err = json.Unmarshal(jsonData, &initialMap); err != nil {
			return "", err
		}

		result, err := json.MarshalIndent(omitEmptyValues(initialMap), "", "  ")
		if err != nil {
			return "", err
		}
		return string(result), nil

	case "yaml":
		initialMap := make(map[string]interface{})
		yamlData, err := yaml.Marshal(resource)
		if err != nil {
			return "", err
		}

		if err = yaml.Unmarshal(yamlData, &initialMap); err != nil {
			return "", err
		}

		result, err := yaml.Marshal(omitEmptyValues(initialMap))
		if err != nil {
			return "", err
		}
		return string(result), nil

	default:
		return "", fmt.Errorf("format %s not supported", outputType)
	}
}

func omitEmptyValues(data map[string]interface{}) map[string]interface{} {
	cleaned := make(map[string]interface{})
	for k, v := range data {
		if !isZeroValue(v) {
			if reflect.TypeOf(v).Kind() == reflect.Map {
				if vm, ok := v.(map[string]interface{}); ok {
					v = omitEmptyValues(vm)
				}
			}
			cleaned[k] = v
		}
	}
	return cleaned
}

func isZeroValue(x interface{}) bool {
	if x == nil {
		return true
	}

	v := reflect.ValueOf(x)
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return v.Len() == 0
	case reflect.Struct:
		z := reflect.New(v.Type()).Elem().Interface()
		return reflect.DeepEqual(x, z)
	default:
		z := reflect.Zero(v.Type()).Interface()
		return reflect.DeepEqual(x, z)
	}
}
