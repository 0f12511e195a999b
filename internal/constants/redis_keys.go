package constants

// Redis Key 统一命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// DictModulePrefix 字典模块
	DictModulePrefix = "dict"

	// EntityOption 字典选项实体
	EntityOption = "option"

	// KeyDictOptions 字典选项缓存 (STRING, JSON数组)
	// 格式: app:dict:option:{dictKey}
	KeyDictOptions = AppPrefix + ":" + DictModulePrefix + ":" + EntityOption + ":%s"

	// KeyDictOptionsPattern 用于清空全部字典缓存
	KeyDictOptionsPattern = AppPrefix + ":" + DictModulePrefix + ":" + EntityOption + ":*"
)
